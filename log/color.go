package log

const (
	colorReset   = "\033[0m"
	colorBlue    = "\033[34m"
	colorGreen   = "\033[32m"
	colorYellow  = "\033[33m"
	colorRed     = "\033[31m"
	colorMagenta = "\033[35m"
)

var levelColors = map[LogLevel]string{
	Debug: colorBlue,
	Info:  colorGreen,
	Warn:  colorYellow,
	Error: colorRed,
	Fatal: colorMagenta,
}

// Color returns the terminal escape sequence used for level. Off and
// unknown levels reset the color.
func Color(l LogLevel) string {
	if c, ok := levelColors[l]; ok {
		return c
	}

	return colorReset
}
