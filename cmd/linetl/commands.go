package main

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ZaguanLabs/linetl"
	"github.com/ZaguanLabs/linetl/cache"
	"github.com/ZaguanLabs/linetl/i18n"
	"github.com/ZaguanLabs/linetl/settings"
)

// ---------------------------------------------------------------------------
// languages
// ---------------------------------------------------------------------------

func (a *app) newLanguagesCmd() *cobra.Command {
	var method string

	cmd := &cobra.Command{
		Use:   "languages",
		Short: "List language codes",
		Long: `List the language codes accepted by --source and --target.
With --method only the languages that method supports are shown.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var m linetl.Method
			if method != "" {
				var err error
				if m, err = linetl.ParseMethod(method); err != nil {
					return err
				}
			}

			w := tabwriter.NewWriter(a.stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "CODE\tNAME\tNATIVE")
			for _, lang := range linetl.Languages {
				if m != "" && !linetl.IsMethodSupportedForLanguage(m, lang.Code) {
					continue
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", lang.Code, lang.Name, lang.Native)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVarP(&method, "method", "m", "", "Only list languages supported by this method")
	return cmd
}

// ---------------------------------------------------------------------------
// check
// ---------------------------------------------------------------------------

func (a *app) newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <method> <source> <target>",
		Short: "Check whether a method supports a language pair",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := linetl.ParseMethod(args[0])
			if err != nil {
				return err
			}
			source, target := linetl.NormalizeLanguage(args[1]), linetl.NormalizeLanguage(args[2])
			if source == "" || target == "" {
				return fmt.Errorf("unknown language in %s → %s", args[1], args[2])
			}

			res := linetl.CheckLanguageSupport(m, source, target)
			if !res.Supported {
				return errors.New(i18n.T(res.ErrorMessage))
			}
			fmt.Fprintf(a.stdout, "%s %s supports %s → %s\n", green("✓"), m.Label(),
				linetl.GetLanguageName(source), linetl.GetLanguageName(target))
			return nil
		},
	}
}

// ---------------------------------------------------------------------------
// probe
// ---------------------------------------------------------------------------

func (a *app) newProbeCmd() *cobra.Command {
	var method, apiKey string

	cmd := &cobra.Command{
		Use:   "probe",
		Short: "Send a test translation through a method",
		Long: `Translate "` + linetl.ProbeText + `" from English to Simplified Chinese with the
configured credentials, bypassing the cache. Useful to check an API key or
a self-hosted endpoint before a long run.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := a.loadConfig()
			if err != nil {
				return err
			}

			var m linetl.Method
			if method != "" {
				if m, err = linetl.ParseMethod(method); err != nil {
					return err
				}
			}
			cfg := file.Runtime(m, "")
			if apiKey != "" {
				cfg.Provider.APIKey = apiKey
			}
			cfg.SourceLang, cfg.TargetLang = "en", "zh"
			if err := cfg.Validate(); err != nil {
				return err
			}

			logger := a.newLogger()
			tr := linetl.NewTranslator(newRegistry(logger), linetl.WithLogger(logger))
			if err := tr.Probe(cmd.Context(), cfg); err != nil {
				return fmt.Errorf("%s: %w", linetl.ProbeFailureMessage(cfg.Method), err)
			}
			fmt.Fprintf(a.stdout, "%s %s is working\n", green("✓"), cfg.Method.Label())
			return nil
		},
	}

	cmd.Flags().StringVarP(&method, "method", "m", "", "Translation method to probe")
	cmd.Flags().StringVar(&apiKey, "api-key", "", "Provider API key (or LINETL_<METHOD>_API_KEY)")
	return cmd
}

// ---------------------------------------------------------------------------
// cache
// ---------------------------------------------------------------------------

func (a *app) newCacheCmd() *cobra.Command {
	var cf cacheFlags

	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and move the translation cache",
		Long: `Inspect and move the translation cache.

The backend comes from the cache section of .linetl.yaml unless the flags
below override it. Export files are JSON and can be imported into any
backend.`,
	}
	cmd.PersistentFlags().StringVar(&cf.backend, "cache", "", "Cache backend: sqlite, redis or memory")
	cmd.PersistentFlags().StringVar(&cf.path, "cache-path", "", "SQLite cache file")
	cmd.PersistentFlags().StringVar(&cf.redisURL, "redis-url", "", "Redis URL for the redis backend")

	withStore := func(fn func(cmd *cobra.Command, args []string, store cache.Store) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			file, err := a.loadConfig()
			if err != nil {
				return err
			}
			store, err := cache.OpenStrict(cmd.Context(), cf.options(file.Cache), a.newLogger())
			if err != nil {
				return fmt.Errorf("opening cache: %w", err)
			}
			defer store.Close()
			return fn(cmd, args, store)
		}
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "count",
			Short: "Print the number of cached translations",
			Args:  cobra.NoArgs,
			RunE: withStore(func(cmd *cobra.Command, args []string, store cache.Store) error {
				fmt.Fprintln(a.stdout, store.Count(cmd.Context()))
				return nil
			}),
		},
		&cobra.Command{
			Use:   "clear",
			Short: "Remove every cached translation",
			Args:  cobra.NoArgs,
			RunE: withStore(func(cmd *cobra.Command, args []string, store cache.Store) error {
				n := store.Clear(cmd.Context())
				a.success("Removed %d cached translations", n)
				return nil
			}),
		},
		&cobra.Command{
			Use:   "export <file>",
			Short: "Write the cache to a JSON file",
			Args:  cobra.ExactArgs(1),
			RunE: withStore(func(cmd *cobra.Command, args []string, store cache.Store) error {
				meta := map[string]string{"generator": linetl.UserAgent()}
				if err := cache.NewExporter(store).ExportToFile(cmd.Context(), args[0], meta); err != nil {
					return err
				}
				a.success("Exported %d translations to %s", store.Count(cmd.Context()), args[0])
				return nil
			}),
		},
		&cobra.Command{
			Use:   "import <file>",
			Short: "Load translations from a JSON export",
			Args:  cobra.ExactArgs(1),
			RunE: withStore(func(cmd *cobra.Command, args []string, store cache.Store) error {
				res, err := cache.NewImporter(store).ImportFromFile(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				a.success("Imported %d translations", res.Imported)
				if res.Failed > 0 {
					a.warn("%d entries were skipped", res.Failed)
				}
				return nil
			}),
		},
	)

	return cmd
}

// ---------------------------------------------------------------------------
// settings
// ---------------------------------------------------------------------------

func (a *app) newSettingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Export and import user settings",
		Long: `Export and import the user settings store (provider credentials, prompts,
default method and languages).

Store location: ` + "$XDG_DATA_HOME/linetl/settings.json",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "export <file>",
			Short: "Write the settings to a JSON file",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := settings.Load().ExportFile(args[0]); err != nil {
					return err
				}
				a.success("Exported settings to %s", args[0])
				return nil
			},
		},
		&cobra.Command{
			Use:   "import <file>",
			Short: "Merge a settings export into the store",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				s := settings.Load()
				res, err := s.ImportFile(args[0])
				if err != nil {
					return err
				}
				if err := s.Save(); err != nil {
					return err
				}

				a.success("Imported %d provider configs into %s", len(res.Updated), settings.FilePath())
				for _, m := range res.Reset {
					a.warn("%s config was outdated and has been reset (API key kept)", m.Label())
				}
				for _, name := range res.Skipped {
					a.warn("unknown method %q ignored", name)
				}
				return nil
			},
		},
	)

	return cmd
}
