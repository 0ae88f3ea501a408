package deps

import (
	"time"

	"github.com/MrSnakeDoc/shelf/internal/directory"
	"github.com/MrSnakeDoc/shelf/internal/favicon"
	"github.com/MrSnakeDoc/shelf/internal/logger"
	"github.com/MrSnakeDoc/shelf/internal/metadata"
	"github.com/MrSnakeDoc/shelf/internal/storage"
	"github.com/MrSnakeDoc/shelf/internal/task"
)

type Deps struct {
	Logger        logger.Logger
	StartTime     time.Time
	Version       string
	Commit        string
	BuildDate     string
	GoVersion     string
	TimeNow       func() time.Time     // for testing, defaults to time.Now
	AllowedHosts  []string             // Host headers allowed to access the server
	AllowedCIDRS  []string             // IPs allowed to access the API
	TrustProxy    bool                 // true if running behind a trusted reverse proxy (e.g., cloudflared)
	Directory     *directory.Service   // mutation API and ranked views
	Storage       storage.Backend      // raw backend, for readiness checks
	Favicons      *favicon.Resolver    // favicon chain resolution
	Metadata      metadata.Source      // served at /api/metadata
	Autofill      *metadata.Autofiller // form pre-filling
	Tasks         *task.Registry       // in-flight autofills keyed by form
	ImportTrigger chan struct{}        // manual homepage import (nil if import disabled)
	ScrapeBurst   int                  // rate limit of /api/metadata
	ScrapePerMin  int
}
