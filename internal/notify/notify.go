// Package notify carries the transient user-facing messages the storefront
// surfaces after mutations and workflow transitions. Handlers embed them in
// API responses for the client to render.
package notify

type Level string

const (
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

type Notice struct {
	Level   Level  `json:"level"`
	Title   string `json:"title"`
	Message string `json:"message,omitempty"`
}

func Success(title, message string) Notice {
	return Notice{Level: LevelSuccess, Title: title, Message: message}
}

func Warning(title, message string) Notice {
	return Notice{Level: LevelWarning, Title: title, Message: message}
}

func Error(title, message string) Notice {
	return Notice{Level: LevelError, Title: title, Message: message}
}
