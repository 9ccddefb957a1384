package contextkeys

type contextKey string

const (
	ActorKey  contextKey = "Actor"
	LoggerKey contextKey = "Logger"
)
