package config

import (
	"fmt"
	"os"
	"sort"

	"github.com/raphaelgruber/termchat/internal/models"
	"gopkg.in/yaml.v3"
)

// Profile describes how to reach one chat platform.
type Profile struct {
	APIKeyEnv string `yaml:"api_key_env"`
	BaseURL   string `yaml:"base_url"`
	Model     string `yaml:"model"`
}

// builtinProfiles mirrors the profile table of the original client, plus
// the providers the langchaingo stack supports.
var builtinProfiles = map[models.Platform]Profile{
	models.PlatformOpenAI: {
		APIKeyEnv: "OPENAI_API_KEY",
		BaseURL:   "https://api.openai.com/v1",
		Model:     "gpt-4o-mini",
	},
	models.PlatformDeepseek: {
		APIKeyEnv: "DEEPSEEK_API_KEY",
		BaseURL:   "https://api.deepseek.com",
		Model:     "deepseek-chat",
	},
	models.PlatformAnthropic: {
		APIKeyEnv: "ANTHROPIC_API_KEY",
		Model:     "claude-3-5-haiku-latest",
	},
	models.PlatformOllama: {
		BaseURL: "http://localhost:11434",
		Model:   "llama3.1",
	},
	models.PlatformBedrock: {
		Model: "anthropic.claude-3-haiku-20240307-v1:0",
	},
}

// Profiles returns the platform profile table: built-ins overlaid with
// user-defined profiles from the given YAML file, if it exists. User
// entries replace built-ins of the same name.
func Profiles(path string) (map[models.Platform]Profile, error) {
	profiles := make(map[models.Platform]Profile, len(builtinProfiles))
	for platform, profile := range builtinProfiles {
		profiles[platform] = profile
	}

	if path == "" {
		return profiles, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return profiles, nil
		}
		return nil, fmt.Errorf("read profiles file: %w", err)
	}

	var overrides map[models.Platform]Profile
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return nil, fmt.Errorf("parse profiles file %s: %w", path, err)
	}
	for platform, profile := range overrides {
		profiles[platform] = profile
	}
	return profiles, nil
}

// PlatformNames returns the sorted names of known platforms, for error
// messages and help text.
func PlatformNames(profiles map[models.Platform]Profile) []string {
	names := make([]string, 0, len(profiles))
	for platform := range profiles {
		names = append(names, string(platform))
	}
	sort.Strings(names)
	return names
}
