package main

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/OliveiraNt/topic-scout/cmd"
	"github.com/OliveiraNt/topic-scout/internal/application"
	"github.com/OliveiraNt/topic-scout/internal/infrastructure/kafka"
	"github.com/OliveiraNt/topic-scout/internal/infrastructure/repository"
	"github.com/OliveiraNt/topic-scout/internal/utils"
	"github.com/joho/godotenv"
)

const appDir = "topic-scout"

func findConfigPath() string {
	names := []string{"config.yml", "config.yaml"}
	var candidates []string
	add := func(dir string) {
		for _, n := range names {
			candidates = append(candidates, filepath.Join(dir, n))
		}
	}

	add(".")
	home, _ := os.UserHomeDir()
	if runtime.GOOS == "windows" {
		if appdata := os.Getenv("APPDATA"); appdata != "" {
			add(filepath.Join(appdata, appDir))
		}
		if pd := os.Getenv("PROGRAMDATA"); pd != "" {
			add(filepath.Join(pd, appDir))
		}
		if home != "" {
			add(filepath.Join(home, appDir))
		}
	} else {
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			add(filepath.Join(xdg, appDir))
		}
		if home != "" {
			add(filepath.Join(home, ".config", appDir))
			add(filepath.Join(home, "."+appDir))
		}
		add(filepath.Join("/etc", appDir))
	}

	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	createPath := "./config.yml"
	initial := []byte("# topic-scout configuration\nclusters: []\n")
	if err := os.WriteFile(createPath, initial, 0644); err == nil {
		return createPath
	}
	return candidates[0]
}

func main() {
	_ = godotenv.Load()
	utils.InitLogger()

	configPath := os.Getenv("TOPIC_SCOUT_CONFIG")
	if configPath == "" {
		configPath = findConfigPath()
	}

	factory := kafka.NewFactory()
	repo := repository.NewClusterRepository(configPath, factory)
	defer repo.Close()

	utils.Logger.Info("initializing repository and kafka factory", "config", configPath)

	if err := repo.LoadFromFile(); err != nil {
		utils.Logger.Warn("failed to load config file", "err", err)
	} else {
		utils.Logger.Info("configuration loaded", "clusters", len(repo.FindAll()), "local", repo.LocalClusterName())
	}
	if err := repo.Watch(); err != nil {
		utils.Logger.Fatal("failed to start config watcher", "err", err)
	}

	clusterService := application.NewClusterService(repo)
	utils.Logger.Info("application layer initialized")

	cmd.StartWeb(clusterService)
}
