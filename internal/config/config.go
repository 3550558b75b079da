package config

import (
	"os"
	"strconv"
	"strings"
)

// Defaults for the domain lists and map center. These mirror the city the app
// was originally built for; override them with env vars for another city.
const (
	defaultNeighborhoods = "Mission,Castro,SoMa,Marina,Richmond,Sunset,North Beach,Hayes Valley,Nob Hill,Chinatown,Other"
	defaultCuisines      = "American,Chinese,French,Indian,Italian,Japanese,Korean,Mediterranean,Mexican,Thai,Vietnamese,Other"
	defaultMapLat        = 37.7749
	defaultMapLng        = -122.4194
)

type Config struct {
	ListenAddr string
	DBPath     string
	LogLevel   string
	LogFile    string

	// Closed lists presented by the UI. The first entry of each is the
	// default for a new draft.
	Neighborhoods []string
	Cuisines      []string

	// Default pin position for a record without a chosen location.
	MapCenterLat float64
	MapCenterLng float64
}

func Load() *Config {
	return &Config{
		ListenAddr:    getEnv("LISTEN_ADDR", ":8080"),
		DBPath:        getEnv("DB_PATH", "/data/tastemap.db"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogFile:       getEnv("LOG_FILE", ""),
		Neighborhoods: splitList(getEnv("NEIGHBORHOODS", defaultNeighborhoods)),
		Cuisines:      splitList(getEnv("CUISINES", defaultCuisines)),
		MapCenterLat:  getFloat("MAP_CENTER_LAT", defaultMapLat),
		MapCenterLng:  getFloat("MAP_CENTER_LNG", defaultMapLng),
	}
}

// DefaultNeighborhood is the draft default, the first list entry.
func (c *Config) DefaultNeighborhood() string {
	if len(c.Neighborhoods) == 0 {
		return ""
	}
	return c.Neighborhoods[0]
}

// DefaultCuisine is the draft default, the first list entry.
func (c *Config) DefaultCuisine() string {
	if len(c.Cuisines) == 0 {
		return ""
	}
	return c.Cuisines[0]
}

func getEnv(key, defaultVal string) string {
	if val, exists := os.LookupEnv(key); exists {
		return val
	}
	return defaultVal
}

func getFloat(key string, defaultVal float64) float64 {
	val, exists := os.LookupEnv(key)
	if !exists {
		return defaultVal
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return defaultVal
	}
	return f
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
