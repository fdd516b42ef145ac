package cfg

type Cfg struct {
	// Application configuration
	Port         string
	APIAccessKey string
	TopicsDir    string
	DefaultTopic string
	DBPath       string
	MinScore     float64

	// Provider configuration
	NewsAPIKey  string
	GNewsAPIKey string
	HTTPTimeout int

	// Background extraction
	WorkerCount       int
	SchedulerInterval int

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}
