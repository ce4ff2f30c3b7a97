package core

// Logger logs messages locally and reports them to the error tracker.
// args may hold errors, extras (map[string]interface{}) and at most one user.User.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}
