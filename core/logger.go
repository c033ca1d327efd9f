package core

// Logger is any service that can report messages at different levels.
// Expected args: error | map[string]interface{} | user.User (attached as the logged in user).
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}
