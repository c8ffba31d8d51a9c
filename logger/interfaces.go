package logger

type Interface interface {
	Print(s string)
	Printf(s string, as ...interface{})
	PrintError(source string, err error)
}
