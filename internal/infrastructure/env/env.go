package env

import (
	"log"
	"os"
	"strings"

	"medi-cal-assistant/internal/application/port/output"

	"github.com/joho/godotenv"
)

var _ output.ConfigPort = (*EnvService)(nil)

// EnvService reads settings from the process environment after layering
// dotenv files under it.
type EnvService struct {
	loaded []string
}

// NewEnvService loads .env and then .env.<APP_ENV> over it. Variables
// already set in the process take precedence over .env but not over the
// APP_ENV file. Missing files are not an error.
func NewEnvService() *EnvService {
	return NewEnvServiceFrom(".")
}

func NewEnvServiceFrom(dir string) *EnvService {
	appEnv := os.Getenv("APP_ENV")
	if appEnv == "" {
		appEnv = "dev"
	}

	s := &EnvService{}
	base := dir + string(os.PathSeparator) + ".env"
	if err := godotenv.Load(base); err == nil {
		s.loaded = append(s.loaded, base)
	}

	overlay := base + "." + appEnv
	switch err := godotenv.Overload(overlay); {
	case err == nil:
		s.loaded = append(s.loaded, overlay)
	case !os.IsNotExist(err):
		log.Printf("Warning: could not load %s: %v", overlay, err)
	}
	return s
}

// Loaded lists the dotenv files that were applied, in order.
func (e *EnvService) Loaded() []string {
	return e.loaded
}

func (e *EnvService) Get(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func (e *EnvService) GetWithDefault(key string, defaultValue string) string {
	if val := e.Get(key); val != "" {
		return val
	}
	return defaultValue
}
