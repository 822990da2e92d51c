package main

import (
	"fmt"
	"os"
	"strings"

	"tagdb/internal/app"
	"tagdb/internal/config"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// readConfig reads the config file named by the application defaults.
func readConfig() (*config.Config, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, fmt.Errorf("getting defaults: %w", err)
	}

	cfg, err := config.ReadFromFile(defaults["config_path"])
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return cfg, nil
}

// newApp reads the config and creates a TagApp. The caller must defer app.Close().
// Only mutating operations save the database on Close.
func newApp(operation string, args []string, mutating bool) (*app.TagApp, error) {
	cfg, err := readConfig()
	if err != nil {
		return nil, err
	}

	op := app.NewOperation(operation, strings.Join(args, " "), mutating)
	a, err := app.NewTagApp(cfg, op, promptPassphrase)
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}

	return a, nil
}

// promptPassphrase reads a passphrase from the terminal without echo.
func promptPassphrase() (string, error) {
	fmt.Fprint(os.Stderr, "Passphrase: ")
	p, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	return string(p), nil
}

var rootCmd = &cobra.Command{
	Use:          "tagdb",
	Short:        "Tag files and query them by tag",
	SilenceUsage: true,
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg := config.NewConfig(defaults["base_dir"])

		if err := config.Init(defaults["config_path"], cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", defaults["config_path"])
		fmt.Printf("Base Dir: %s\n", defaults["base_dir"])
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := readConfig()
		if err != nil {
			return err
		}

		fmt.Printf("Base Dir:   %s\n", cfg.BaseDir)
		fmt.Printf("Log Dir:    %s\n", cfg.LogDir)
		fmt.Printf("Database:   %s\n", cfg.Database.Location)
		fmt.Printf("Store:      %s\n", cfg.Store.Type)
		if cfg.Store.Type == "s3" {
			fmt.Printf("S3 Bucket:  %s\n", cfg.Store.S3Bucket)
			fmt.Printf("S3 Prefix:  %s\n", cfg.Store.S3Prefix)
		}
		fmt.Printf("Encryption: %s\n", cfg.Encryption.Type)
		if len(cfg.Filesystem.Ignore) > 0 {
			fmt.Printf("Ignore:     %s\n", strings.Join(cfg.Filesystem.Ignore, ", "))
		}
		return nil
	},
}

// keys command
var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Manage encryption keys",
}

var keysSetupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Generate the encryption key pair",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := readConfig()
		if err != nil {
			return err
		}

		passphrase, err := promptPassphrase()
		if err != nil {
			return fmt.Errorf("reading passphrase: %w", err)
		}
		fmt.Fprint(os.Stderr, "Confirm ")
		confirm, err := promptPassphrase()
		if err != nil {
			return fmt.Errorf("reading passphrase: %w", err)
		}
		if passphrase != confirm {
			return fmt.Errorf("passphrases do not match")
		}

		if err := app.SetupKeys(cfg, passphrase); err != nil {
			return err
		}
		fmt.Printf("Public key:  %s\n", cfg.Encryption.PublicKeyPath)
		fmt.Printf("Private key: %s\n", cfg.Encryption.PrivateKeyPath)
		return nil
	},
}

// init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create an empty database",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := readConfig()
		if err != nil {
			return err
		}

		a, err := app.InitTagApp(cfg, app.NewOperation("Init", "", true))
		if err != nil {
			return fmt.Errorf("initializing database: %w", err)
		}
		defer a.Close()

		fmt.Printf("Database initialized at %s\n", cfg.Database.Location)
		return nil
	},
}

// add command
var addCmd = &cobra.Command{
	Use:   "add [PATH]",
	Short: "Register files in the database",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		recursive, _ := cmd.Flags().GetBool("recursive")

		a, err := newApp("AddFiles", args, true)
		if err != nil {
			return err
		}
		defer a.Close()

		target := "."
		if len(args) > 0 {
			target = args[0]
		}

		count, err := a.AddFiles(target, recursive)
		if err != nil {
			return fmt.Errorf("adding files: %w", err)
		}

		fmt.Printf("Registered %d file(s)\n", count)
		return nil
	},
}

// tag command
var tagCmd = &cobra.Command{
	Use:   "tag PATH TAG",
	Short: "Attach a tag to a registered file",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("Tag", args, true)
		if err != nil {
			return err
		}
		defer a.Close()

		return a.Tag(args[0], args[1])
	},
}

var tagMatchingCmd = &cobra.Command{
	Use:   "tag-matching QUERY TAG",
	Short: "Attach a tag to every file matching a query",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("TagMatching", args, true)
		if err != nil {
			return err
		}
		defer a.Close()

		count, err := a.TagMatching(args[0], args[1])
		if err != nil {
			return err
		}

		fmt.Printf("Tagged %d file(s)\n", count)
		return nil
	},
}

// query command
var queryCmd = &cobra.Command{
	Use:   "query QUERY",
	Short: "List files matching a query",
	Long: `List files with at least one tag matching QUERY.

Predicates: eq(TAG), contains(TAG), begins(TAG), ends(TAG).
Combine with & and |, group with parentheses:

  tagdb query 'begins(holiday) & contains(2020) | eq(work)'`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("Query", args, false)
		if err != nil {
			return err
		}
		defer a.Close()

		paths, err := a.Query(args[0])
		if err != nil {
			return err
		}

		for _, p := range paths {
			fmt.Println(p)
		}
		return nil
	},
}

// rm command
var rmCmd = &cobra.Command{
	Use:   "rm QUERY",
	Short: "Remove file entries matching a query",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("Remove", args, true)
		if err != nil {
			return err
		}
		defer a.Close()

		count, err := a.Remove(args[0])
		if err != nil {
			return err
		}

		fmt.Printf("Removed %d file(s)\n", count)
		return nil
	},
}

// untag command
var untagCmd = &cobra.Command{
	Use:   "untag QUERY",
	Short: "Remove tags matching a query",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		file, _ := cmd.Flags().GetString("file")

		a, err := newApp("Untag", args, true)
		if err != nil {
			return err
		}
		defer a.Close()

		count, err := a.Untag(args[0], file)
		if err != nil {
			return err
		}

		fmt.Printf("Removed %d tag(s)\n", count)
		return nil
	},
}

// ls command
var lsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List registered files and their tags",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("List", args, false)
		if err != nil {
			return err
		}
		defer a.Close()

		files := a.List()
		if len(files) == 0 {
			fmt.Println("No files registered.")
			return nil
		}

		for _, f := range files {
			tags := make([]string, 0, f.Len())
			for _, t := range f.Tags() {
				tags = append(tags, t.String())
			}
			fmt.Printf("%s\t%s\n", f.Path(), strings.Join(tags, ", "))
		}
		return nil
	},
}

// status command
var statusCmd = &cobra.Command{
	Use:   "status [DIR]",
	Short: "Show which files under a directory are registered",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		recursive, _ := cmd.Flags().GetBool("recursive")

		a, err := newApp("Status", args, false)
		if err != nil {
			return err
		}
		defer a.Close()

		target := "."
		if len(args) > 0 {
			target = args[0]
		}

		statuses, err := a.Status(target, recursive)
		if err != nil {
			return err
		}

		if len(statuses) == 0 {
			fmt.Println("No files found.")
			return nil
		}

		for _, s := range statuses {
			var indicator string
			switch {
			case s.IsMissing:
				indicator = "M"
			case s.IsRegistered:
				indicator = "R"
			default:
				indicator = "?"
			}
			fmt.Printf("%s %3d  %s\n", indicator, s.TagCount, s.Path)
		}
		return nil
	},
}

func init() {
	// config subcommands
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)

	// keys subcommands
	keysCmd.AddCommand(keysSetupCmd)

	// root commands
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(keysCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(addCmd)
	addCmd.Flags().BoolP("recursive", "r", false, "Recurse into subdirectories")
	rootCmd.AddCommand(tagCmd)
	rootCmd.AddCommand(tagMatchingCmd)
	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(rmCmd)
	rootCmd.AddCommand(untagCmd)
	untagCmd.Flags().StringP("file", "f", "", "Only remove tags from this file")
	rootCmd.AddCommand(lsCmd)
	rootCmd.AddCommand(statusCmd)
	statusCmd.Flags().BoolP("recursive", "r", false, "Recurse into subdirectories")
}
