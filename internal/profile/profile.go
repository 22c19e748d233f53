package profile

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Profile is the configuration to start the matching service.
type Profile struct {
	// Mode can be "prod" or "dev" or "demo"
	Mode string
	// Data is the data directory, used for the sqlite database and uploaded images
	Data string
	// DSN points to where findify stores its own data
	DSN string
	// Driver is the database driver (sqlite or postgres)
	Driver string
	// Version is the current version of the service
	Version string
	// InstanceURL is the public url of this findify instance, used in image URLs
	InstanceURL string

	// Feature extraction configuration
	ExtractorBaseURL string        // FINDIFY_EXTRACTOR_BASE_URL (OpenAI-compatible embeddings endpoint)
	ExtractorAPIKey  string        // FINDIFY_EXTRACTOR_API_KEY
	ExtractorModel   string        // FINDIFY_EXTRACTOR_MODEL (default: clip-vit-base-patch16)
	ExtractorDim     int           // FINDIFY_EXTRACTOR_DIM, fixed output dimension (default: 512)
	ExtractorTimeout time.Duration // FINDIFY_EXTRACTOR_TIMEOUT (default: 30s)

	// Matching configuration
	LocationNarrowing bool          // FINDIFY_MATCH_LOCATION_NARROWING (default: true)
	MinNotifyScore    int           // FINDIFY_MATCH_MIN_NOTIFY_SCORE, 0 notifies on every match
	RunnerInterval    time.Duration // FINDIFY_MATCH_RUNNER_INTERVAL (default: 2m)
	RunnerBatchSize   int           // FINDIFY_MATCH_RUNNER_BATCH_SIZE (default: 8)
	RewardPoints      int           // FINDIFY_REWARD_POINTS credited on a confirmed return (default: 10)

	// Notification configuration
	SMTPHost   string // FINDIFY_SMTP_HOST, email delivery is skipped when empty
	SMTPPort   int    // FINDIFY_SMTP_PORT (default: 587)
	SMTPUser   string // FINDIFY_SMTP_USERNAME
	SMTPPass   string // FINDIFY_SMTP_PASSWORD
	SMTPFrom   string // FINDIFY_SMTP_FROM
	WebhookURL string // FINDIFY_WEBHOOK_URL, optional integration endpoint
}

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

func checkDataDir(dataDir string) (string, error) {
	// Convert to absolute path if relative path is supplied.
	if !filepath.IsAbs(dataDir) {
		relativeDir := filepath.Join(filepath.Dir(os.Args[0]), dataDir)
		absDir, err := filepath.Abs(relativeDir)
		if err != nil {
			return "", err
		}
		dataDir = absDir
	}

	// Trim trailing \ or / in case user supplies
	dataDir = strings.TrimRight(dataDir, "\\/")
	if _, err := os.Stat(dataDir); err != nil {
		return "", errors.Wrapf(err, "unable to access data folder %s", dataDir)
	}
	return dataDir, nil
}

func (p *Profile) Validate() error {
	if p.Mode != "demo" && p.Mode != "dev" && p.Mode != "prod" {
		p.Mode = "demo"
	}

	if p.Data == "" {
		p.Data = "."
	}
	dataDir, err := checkDataDir(p.Data)
	if err != nil {
		return errors.Wrap(err, "failed to check data dir")
	}
	p.Data = dataDir

	if p.Driver == "" {
		p.Driver = "sqlite"
	}
	if p.Driver == "sqlite" && p.DSN == "" {
		dbFile := fmt.Sprintf("findify_%s.db", p.Mode)
		p.DSN = filepath.Join(dataDir, dbFile)
	}
	if p.Driver == "postgres" && p.DSN == "" {
		return errors.New("postgres driver requires a DSN")
	}

	if p.ExtractorModel == "" {
		p.ExtractorModel = "clip-vit-base-patch16"
	}
	if p.ExtractorDim <= 0 {
		p.ExtractorDim = 512
	}
	if p.ExtractorTimeout <= 0 {
		p.ExtractorTimeout = 30 * time.Second
	}

	if p.RunnerInterval <= 0 {
		p.RunnerInterval = 2 * time.Minute
	}
	if p.RunnerBatchSize <= 0 {
		p.RunnerBatchSize = 8
	}
	if p.RewardPoints <= 0 {
		p.RewardPoints = 10
	}
	if p.MinNotifyScore < 0 || p.MinNotifyScore > 100 {
		return errors.Errorf("min notify score must be within [0, 100], got %d", p.MinNotifyScore)
	}
	if p.SMTPPort <= 0 {
		p.SMTPPort = 587
	}

	return nil
}
