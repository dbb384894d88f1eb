package config

// ExitCodeBlockingError should be returned when the tool is completely
// inoperable. For example, the config is broken or the client can't be built.
const ExitCodeBlockingError = 1

// ExitCodeRequestFailed should be returned when the request was sent but the
// response came back unsuccessful.
const ExitCodeRequestFailed = 2
