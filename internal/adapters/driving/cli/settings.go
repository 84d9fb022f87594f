package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/docchat/internal/core/domain"
	"github.com/custodia-labs/docchat/internal/core/ports/driving"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure the source directory, AI providers and API keys.

Use subcommands to configure specific settings or run the interactive wizard.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsWizardCmd = &cobra.Command{
	Use:   "wizard",
	Short: "Interactive setup wizard",
	Long:  `Run an interactive wizard to configure all settings step by step.`,
	RunE:  runSettingsWizard,
}

var settingsSetKeyCmd = &cobra.Command{
	Use:   "set-key <provider> [key]",
	Short: "Store an API key",
	Long: `Store the API key for a provider in the config file.

When the key is not given it is read from the terminal without echo.
Keys in the environment (OPENAI_API_KEY, ANTHROPIC_API_KEY) take
precedence over stored keys.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runSettingsSetKey,
}

var settingsSetSourceCmd = &cobra.Command{
	Use:   "set-source <dir>",
	Short: "Set the document directory",
	Args:  cobra.ExactArgs(1),
	RunE:  runSettingsSetSource,
}

var settingsEmbeddingCmd = &cobra.Command{
	Use:   "embedding",
	Short: "Configure embedding provider",
	Long:  `Configure the provider used to embed documents and questions.`,
	RunE:  runSettingsEmbedding,
}

var settingsLLMCmd = &cobra.Command{
	Use:   "llm",
	Short: "Configure LLM provider",
	Long:  `Configure the provider used to answer questions and summarise pages.`,
	RunE:  runSettingsLLM,
}

func init() {
	for _, c := range []*cobra.Command{settingsWizardCmd, settingsEmbeddingCmd, settingsLLMCmd} {
		c.Flags().Bool("no-validate", false, "do not ping the provider after saving")
	}
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsWizardCmd)
	settingsCmd.AddCommand(settingsSetKeyCmd)
	settingsCmd.AddCommand(settingsSetSourceCmd)
	settingsCmd.AddCommand(settingsEmbeddingCmd)
	settingsCmd.AddCommand(settingsLLMCmd)
	rootCmd.AddCommand(settingsCmd)
}

// settingsService returns the settings service of the session.
func settingsService(cmd *cobra.Command) (driving.SettingsService, error) {
	state, err := session(cmd)
	if err != nil {
		return nil, err
	}
	if state.SettingsService == nil {
		return nil, errors.New("settings service not configured")
	}
	return state.SettingsService, nil
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	svc, err := settingsService(cmd)
	if err != nil {
		return err
	}

	settings, err := svc.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[Ingest]")
	cmd.Printf("  Source directory: %s\n", settings.Ingest.SourceDir)
	cmd.Printf("  Include: %s\n", strings.Join(settings.Ingest.Include, ", "))
	cmd.Println()

	cmd.Println("[Store]")
	cmd.Printf("  Backend: %s\n", settings.Store.Backend)
	cmd.Printf("  Collection: %s\n", settings.Store.Collection)
	if settings.Store.DataDir != "" {
		cmd.Printf("  Data directory: %s\n", settings.Store.DataDir)
	}
	cmd.Println()

	cmd.Println("[Embedding]")
	printProvider(cmd, settings.Embedding.Provider, settings.Embedding.Model,
		settings.Embedding.BaseURL, settings.Embedding.APIKey, settings.Embedding.IsConfigured())
	cmd.Println()

	cmd.Println("[LLM]")
	printProvider(cmd, settings.LLM.Provider, settings.LLM.Model,
		settings.LLM.BaseURL, settings.LLM.APIKey, settings.LLM.IsConfigured())
	cmd.Println()

	cmd.Println("[Chat]")
	cmd.Printf("  Top k: %d\n", settings.Retrieval.K)
	cmd.Printf("  Format: %s\n", settings.Chat.Format.Description())
	cmd.Printf("  Language: %s\n", settings.Chat.Language)
	cmd.Printf("  Stream: %t\n", settings.Chat.Stream)
	cmd.Println()

	if err := svc.Validate(); err != nil {
		cmd.Printf("Warning: %s\n", userMessage(err))
	} else {
		cmd.Println("Configuration is valid.")
	}

	return nil
}

func printProvider(cmd *cobra.Command, provider domain.AIProvider, model, baseURL, apiKey string, configured bool) {
	cmd.Printf("  Provider: %s\n", provider.Description())
	cmd.Printf("  Model: %s\n", model)
	if provider.IsLocal() || baseURL != "" {
		cmd.Printf("  Base URL: %s\n", baseURL)
	}
	if provider.RequiresAPIKey() {
		if apiKey != "" {
			cmd.Printf("  API Key: %s\n", maskAPIKey(apiKey))
		} else {
			cmd.Printf("  API Key: (not set)\n")
		}
	}
	status := "configured"
	if !configured {
		status = "not configured"
	}
	cmd.Printf("  Status: %s\n", status)
}

func runSettingsWizard(cmd *cobra.Command, _ []string) error {
	svc, err := settingsService(cmd)
	if err != nil {
		return err
	}
	validate, err := shouldValidate(cmd)
	if err != nil {
		return err
	}

	cmd.Println("docchat Settings Wizard")
	cmd.Println("=======================")
	cmd.Println()

	reader := bufio.NewReader(cmd.InOrStdin())

	settings, err := svc.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Step 1: Document Directory")
	cmd.Println("--------------------------")
	cmd.Printf("Enter directory [%s]: ", settings.Ingest.SourceDir)
	if dir := readLine(reader); dir != "" {
		if err := svc.SetSourceDir(dir); err != nil {
			return fmt.Errorf("failed to set source directory: %w", err)
		}
	}
	cmd.Println()

	cmd.Println("Step 2: Configure Embedding Provider")
	cmd.Println("------------------------------------")
	if err := configureEmbeddingProvider(cmd, svc, reader, validate); err != nil {
		return err
	}

	cmd.Println("Step 3: Configure LLM Provider")
	cmd.Println("------------------------------")
	if err := configureLLMProvider(cmd, svc, reader, validate); err != nil {
		return err
	}

	cmd.Println("Configuration Complete!")
	cmd.Println("=======================")
	if err := svc.Validate(); err != nil {
		cmd.Printf("Warning: %s\n", userMessage(err))
	} else {
		cmd.Println("All settings are valid and saved.")
	}

	return nil
}

func runSettingsSetKey(cmd *cobra.Command, args []string) error {
	svc, err := settingsService(cmd)
	if err != nil {
		return err
	}

	provider := domain.AIProvider(strings.ToLower(args[0]))
	if !provider.RequiresAPIKey() {
		return fmt.Errorf("provider %q does not use an API key: %w", args[0], domain.ErrInvalidInput)
	}

	var apiKey string
	if len(args) == 2 {
		apiKey = strings.TrimSpace(args[1])
	} else {
		cmd.Printf("Enter API key for %s: ", provider.Description())
		apiKey = readPassword(cmd.InOrStdin())
		cmd.Println()
	}
	if apiKey == "" {
		return errors.New("API key is required for this provider")
	}

	if err := svc.SetAPIKey(provider, apiKey); err != nil {
		return fmt.Errorf("failed to store API key: %w", err)
	}
	cmd.Printf("API key stored for %s: %s\n", provider.Description(), maskAPIKey(apiKey))
	return nil
}

func runSettingsSetSource(cmd *cobra.Command, args []string) error {
	svc, err := settingsService(cmd)
	if err != nil {
		return err
	}

	if err := svc.SetSourceDir(args[0]); err != nil {
		return fmt.Errorf("failed to set source directory: %w", err)
	}
	cmd.Printf("Source directory set to: %s\n", args[0])
	return nil
}

func runSettingsEmbedding(cmd *cobra.Command, _ []string) error {
	svc, err := settingsService(cmd)
	if err != nil {
		return err
	}
	validate, err := shouldValidate(cmd)
	if err != nil {
		return err
	}

	reader := bufio.NewReader(cmd.InOrStdin())
	return configureEmbeddingProvider(cmd, svc, reader, validate)
}

func runSettingsLLM(cmd *cobra.Command, _ []string) error {
	svc, err := settingsService(cmd)
	if err != nil {
		return err
	}
	validate, err := shouldValidate(cmd)
	if err != nil {
		return err
	}

	reader := bufio.NewReader(cmd.InOrStdin())
	return configureLLMProvider(cmd, svc, reader, validate)
}

func shouldValidate(cmd *cobra.Command) (bool, error) {
	noValidate, err := cmd.Flags().GetBool("no-validate")
	if err != nil {
		return false, fmt.Errorf("getting no-validate flag: %w", err)
	}
	return !noValidate, nil
}

// providerChoice is the outcome of the provider prompts.
type providerChoice struct {
	provider domain.AIProvider
	model    string
	apiKey   string
}

// chooseProvider asks for a provider, model and API key. A stored or
// environment key can be kept by pressing enter.
func chooseProvider(
	cmd *cobra.Command, reader *bufio.Reader, title string,
	providers []domain.AIProvider, defaults map[domain.AIProvider]string,
) (providerChoice, error) {
	cmd.Println(title)
	for i, p := range providers {
		cmd.Printf("  %d. %s\n", i+1, p.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	idx := parseChoice(readLine(reader), len(providers), 1)
	selected := providers[idx-1]

	defaultModel := defaults[selected]
	cmd.Printf("Enter model name [%s]: ", defaultModel)
	model := readLine(reader)
	if model == "" {
		model = defaultModel
	}

	var apiKey string
	if selected.RequiresAPIKey() {
		if env := selected.APIKeyEnv(); env != "" && os.Getenv(env) != "" {
			cmd.Printf("Using API key from %s\n", env)
		} else {
			cmd.Print("Enter API key: ")
			apiKey = readLineOrPassword(reader, cmd.InOrStdin())
			cmd.Println()
			if apiKey == "" {
				return providerChoice{}, errors.New("API key is required for this provider")
			}
		}
	}

	return providerChoice{provider: selected, model: model, apiKey: apiKey}, nil
}

func configureEmbeddingProvider(
	cmd *cobra.Command, svc driving.SettingsService, reader *bufio.Reader, validate bool,
) error {
	choice, err := chooseProvider(cmd, reader, "Select Embedding Provider",
		domain.AllEmbeddingProviders(), domain.DefaultEmbeddingModels())
	if err != nil {
		return err
	}

	if err := svc.SetEmbeddingProvider(choice.provider, choice.model, choice.apiKey); err != nil {
		return fmt.Errorf("failed to configure embedding provider: %w", err)
	}

	if validate {
		cmd.Print("Validating configuration... ")
		if err := svc.ValidateEmbeddingConfig(cmd.Context()); err != nil {
			cmd.Printf("FAILED: %v\n", err)
			return fmt.Errorf("embedding configuration validation failed: %w", err)
		}
		cmd.Println("OK")
	}

	cmd.Printf("Embedding provider configured: %s (%s)\n\n", choice.provider.Description(), choice.model)
	return nil
}

func configureLLMProvider(
	cmd *cobra.Command, svc driving.SettingsService, reader *bufio.Reader, validate bool,
) error {
	choice, err := chooseProvider(cmd, reader, "Select LLM Provider",
		domain.AllLLMProviders(), domain.DefaultLLMModels())
	if err != nil {
		return err
	}

	if err := svc.SetLLMProvider(choice.provider, choice.model, choice.apiKey); err != nil {
		return fmt.Errorf("failed to configure LLM provider: %w", err)
	}

	if validate {
		cmd.Print("Validating configuration... ")
		if err := svc.ValidateLLMConfig(cmd.Context()); err != nil {
			cmd.Printf("FAILED: %v\n", err)
			return fmt.Errorf("LLM configuration validation failed: %w", err)
		}
		cmd.Println("OK")
	}

	cmd.Printf("LLM provider configured: %s (%s)\n\n", choice.provider.Description(), choice.model)
	return nil
}

// Helper functions.

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

// readPassword reads a secret without echo when in is a terminal.
//
//nolint:errcheck // CLI helper, error ignored for UX
func readPassword(in io.Reader) string {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		password, err := term.ReadPassword(int(f.Fd()))
		if err == nil {
			return strings.TrimSpace(string(password))
		}
	}
	return readLine(bufio.NewReader(in))
}

// readLineOrPassword reads a secret from a terminal without echo, or the
// next line of reader otherwise.
func readLineOrPassword(reader *bufio.Reader, in io.Reader) string {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return readPassword(in)
	}
	return readLine(reader)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
