package logsvc

import (
	"bytes"
	"errors"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/trezcool/masomo-analytics/core"
	"github.com/trezcool/masomo-analytics/core/user"
)

func newTestLogger(debug bool) (*RollbarLogger, *bytes.Buffer) {
	var buf bytes.Buffer
	l := NewRollbarLogger(log.New(&buf, "", 0), &core.Config{Env: "TEST", Debug: debug})
	l.Enable(false)
	return l, &buf
}

func TestRollbarLogger_prepare(t *testing.T) {
	l, _ := newTestLogger(true)
	err := errors.New("boom")
	fields := map[string]interface{}{"course_id": 1}
	usr := user.User{ID: 7, Username: "jdoe"}

	got := l.prepare("msg", []interface{}{err, usr, fields, user.User{ID: 8}})
	assert.Equal(t, []interface{}{"msg", err, fields}, got)
}

func TestRollbarLogger_print(t *testing.T) {
	tests := []struct {
		name    string
		verbose bool
		log     func(l *RollbarLogger)
		want    string
	}{
		{
			name:    "debug shown when verbose",
			verbose: true,
			log:     func(l *RollbarLogger) { l.Debug("denied") },
			want:    "[debug] denied\n",
		},
		{
			name: "debug hidden otherwise",
			log:  func(l *RollbarLogger) { l.Debug("denied") },
			want: "",
		},
		{
			name: "error with args",
			log:  func(l *RollbarLogger) { l.Error("failed", map[string]interface{}{"kind": "assignments"}) },
			want: "[error] failed\nmap[kind:assignments]\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, buf := newTestLogger(tt.verbose)
			tt.log(l)
			assert.Equal(t, tt.want, buf.String())
		})
	}
}
