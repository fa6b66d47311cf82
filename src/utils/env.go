package utils

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

// EnvFile returns the dotenv file for the current GO_ENV under
// $PROJECTS_DIR/lattice-pricer.
func EnvFile() (string, error) {
	projectsDir, err := GetEnv("PROJECTS_DIR")
	if err != nil {
		return "", fmt.Errorf("EnvFile: %w", err)
	}

	goEnv := GetEnvOrDefault("GO_ENV", "development")
	return filepath.Join(projectsDir, "lattice-pricer", ".env."+goEnv), nil
}

// InitEnvironmentVariables loads EnvFile without overriding variables that
// are already set. Production deployments set everything in the environment.
func InitEnvironmentVariables() error {
	if GetEnvOrDefault("ENV", "") == "production" {
		log.Info("Running in production environment")
		return nil
	}

	envFile, err := EnvFile()
	if err != nil {
		return err
	}

	if err := godotenv.Load(envFile); err != nil {
		return fmt.Errorf("failed to load %s: %w", envFile, err)
	}

	log.Debugf("loaded %s", envFile)
	return nil
}

func GetEnv(key string) (string, error) {
	value, found := os.LookupEnv(key)
	if !found || value == "" {
		return "", fmt.Errorf("%s environment variable not set", key)
	}

	return value, nil
}

func GetEnvOrDefault(key, fallback string) string {
	if value, err := GetEnv(key); err == nil {
		return value
	}

	return fallback
}
