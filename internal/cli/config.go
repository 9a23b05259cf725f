package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ppiankov/scaleproof/internal/model"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// envPrefix namespaces every configuration environment variable
const envPrefix = "SCALEPROOF"

// secretEnv maps config keys that never appear in YAML to the variables that may hold them.
// The first variable set wins.
var secretEnv = map[string][]string{
	"llm.api_key":    {envPrefix + "_LLM_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY"},
	"llm.base_url":   {envPrefix + "_LLM_BASE_URL", "OLLAMA_BASE_URL"},
	"search.api_key": {envPrefix + "_SEARCH_API_KEY"},
}

// optionalKeys are omitted from the marshaled defaults when empty but may still come from the environment
var optionalKeys = []string{
	"http.http_proxy", "http.https_proxy", "http.no_proxy",
	"cache.disk_dir",
	"search.endpoint", "search.result_path",
	"llm.provider", "llm.model",
}

// registerDefaults teaches v every config key so SCALEPROOF_* variables resolve
// during Unmarshal, e.g. SCALEPROOF_HTTP_TIMEOUT=5s
func registerDefaults(v *viper.Viper) error {
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	data, err := yaml.Marshal(model.DefaultConfig())
	if err != nil {
		return fmt.Errorf("marshal default config: %w", err)
	}
	var tree map[string]interface{}
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return fmt.Errorf("unmarshal default config: %w", err)
	}
	for key, value := range flatten("", tree) {
		v.SetDefault(key, value)
	}

	for _, key := range optionalKeys {
		if err := v.BindEnv(key); err != nil {
			return fmt.Errorf("bind %s: %w", key, err)
		}
	}
	for key, vars := range secretEnv {
		if err := v.BindEnv(append([]string{key}, vars...)...); err != nil {
			return fmt.Errorf("bind %s: %w", key, err)
		}
	}
	return nil
}

func flatten(prefix string, tree map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{})
	for k, val := range tree {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if nested, ok := val.(map[string]interface{}); ok {
			for nk, nv := range flatten(key, nested) {
				out[nk] = nv
			}
			continue
		}
		out[key] = val
	}
	return out
}

// loadConfig resolves defaults, config file and environment into a Config
func loadConfig(v *viper.Viper) (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parse configuration: %w", err)
	}
	return cfg, nil
}

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage Scaleproof configuration",
	Long: `Manage Scaleproof configuration files and settings.

Configuration hierarchy (highest to lowest priority):
1. CLI flags
2. Environment variables (SCALEPROOF_*, loaded after .env)
3. Config file (~/.scaleproof/config.yaml)
4. Defaults`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(viper.GetViper())
		if err != nil {
			return err
		}

		if configFile := viper.ConfigFileUsed(); configFile != "" {
			fmt.Fprintf(os.Stderr, "Configuration file: %s\n\n", configFile)
		} else {
			fmt.Fprintf(os.Stderr, "No configuration file found (using defaults)\n\n")
		}

		yamlData, err := yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("marshal config: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprint(out, string(yamlData))
		fmt.Fprintln(out)
		fmt.Fprintf(out, "# Secrets (never shown): %s\n", strings.Join(secretVars(), ", "))
		return nil
	},
}

var configInitPath string

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default configuration file",
	Long:  `Create a default configuration file (default ~/.scaleproof/config.yaml) with every option.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configInitPath
		if path == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return fmt.Errorf("find home directory: %w", err)
			}
			path = filepath.Join(home, ".scaleproof", "config.yaml")
		}

		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config file already exists: %s\nUse 'scaleproof config show' to view it, or delete it first to recreate", path)
		}
		if err := writeDefaultConfig(path); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "✓ Created default configuration: %s\n", path)
		return nil
	},
}

// writeDefaultConfig writes the commented default configuration to path
func writeDefaultConfig(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	yamlData, err := yaml.Marshal(model.DefaultConfig())
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	var b strings.Builder
	b.WriteString("# Scaleproof Configuration File\n")
	b.WriteString("#\n")
	b.WriteString("# Configuration hierarchy (highest to lowest priority):\n")
	b.WriteString("#   1. CLI flags\n")
	b.WriteString("#   2. Environment variables (SCALEPROOF_*, e.g. SCALEPROOF_HTTP_TIMEOUT=5s)\n")
	b.WriteString("#   3. This config file\n")
	b.WriteString("#   4. Built-in defaults\n\n")
	b.Write(yamlData)
	b.WriteString("\n# API keys are read from the environment or .env only:\n")
	for _, v := range secretVars() {
		fmt.Fprintf(&b, "#   %s\n", v)
	}

	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func secretVars() []string {
	var vars []string
	for _, vs := range secretEnv {
		vars = append(vars, vs...)
	}
	sort.Strings(vars)
	return vars
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
	configInitCmd.Flags().StringVar(&configInitPath, "path", "", "write to this path instead of ~/.scaleproof/config.yaml")
}
