package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/mycloud/internal/flagx"
	"github.com/dmitrijs2005/mycloud/internal/timex"
)

// JsonConfig defines a configuration structure tailored for JSON
// unmarshalling. It uses timex.Duration for interval fields, which allows
// parsing both string values such as "5m" and integer nanoseconds.
//
// This struct is an intermediate DTO used only for reading JSON
// configuration files. After unmarshalling, its fields are copied into the
// runtime Config struct which uses time.Duration.
type JsonConfig struct {
	DatabaseDSN    string `json:"database_dsn"`
	S3RootUser     string `json:"s3_root_user"`
	S3RootPassword string `json:"s3_root_password"`
	S3Bucket       string `json:"s3_bucket"`
	S3Region       string `json:"s3_region"`
	S3BaseEndpoint string `json:"s3_base_endpoint"`

	UsageCacheTTL  timex.Duration `json:"usage_cache_ttl"`
	UsageCacheSize *int           `json:"usage_cache_size"`

	SweepInterval timex.Duration `json:"sweep_interval"`

	DefaultShareDays *int `json:"default_share_days"`
	MinShareDays     *int `json:"min_share_days"`
	MaxShareDays     *int `json:"max_share_days"`

	DefaultUserBytes *int64 `json:"default_user_bytes"`
	MinUserBytes     *int64 `json:"min_user_bytes"`
	AdminUserBytes   *int64 `json:"admin_user_bytes"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config instance.
//
// The JSON file path comes from the -c or -config command-line flags; if
// neither is set, no JSON file is loaded. If the file cannot be read or
// contains invalid JSON, the function panics.
//
// String fields overwrite only when non-empty, numeric fields only when
// present in the file, so partial config files merge over the defaults.
func parseJson(config *Config) {

	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	err = json.Unmarshal(file, c)
	if err != nil {
		panic(err)
	}

	if c.DatabaseDSN != "" {
		config.DatabaseDSN = c.DatabaseDSN
	}
	if c.S3RootUser != "" {
		config.S3RootUser = c.S3RootUser
	}
	if c.S3RootPassword != "" {
		config.S3RootPassword = c.S3RootPassword
	}
	if c.S3Bucket != "" {
		config.S3Bucket = c.S3Bucket
	}
	if c.S3Region != "" {
		config.S3Region = c.S3Region
	}
	if c.S3BaseEndpoint != "" {
		config.S3BaseEndpoint = c.S3BaseEndpoint
	}
	if c.UsageCacheTTL.Duration != 0 {
		config.UsageCacheTTL = time.Duration(c.UsageCacheTTL.Duration)
	}
	if c.UsageCacheSize != nil {
		config.UsageCacheSize = *c.UsageCacheSize
	}
	if c.SweepInterval.Duration != 0 {
		config.SweepInterval = time.Duration(c.SweepInterval.Duration)
	}
	if c.DefaultShareDays != nil {
		config.DefaultShareDays = *c.DefaultShareDays
	}
	if c.MinShareDays != nil {
		config.MinShareDays = *c.MinShareDays
	}
	if c.MaxShareDays != nil {
		config.MaxShareDays = *c.MaxShareDays
	}
	if c.DefaultUserBytes != nil {
		config.DefaultUserBytes = *c.DefaultUserBytes
	}
	if c.MinUserBytes != nil {
		config.MinUserBytes = *c.MinUserBytes
	}
	if c.AdminUserBytes != nil {
		config.AdminUserBytes = *c.AdminUserBytes
	}
}
