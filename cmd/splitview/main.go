package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/xonecas/splitview/internal/config"
	"github.com/xonecas/splitview/internal/filesearch"
	"github.com/xonecas/splitview/internal/highlight"
	"github.com/xonecas/splitview/internal/logging"
	"github.com/xonecas/splitview/internal/resize"
	"github.com/xonecas/splitview/internal/split"
	"github.com/xonecas/splitview/internal/store"
	"github.com/xonecas/splitview/internal/tui"
)

const renderCacheSize = 64

type flags struct {
	config   string
	vertical bool
	reverse  bool
	noWrap   bool
	logLevel string
	theme    string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var f flags
	root := &cobra.Command{
		Use:           "splitview [dir]",
		Short:         "Browse a directory in resizable split panes",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}
			cfg, err := loadConfig(cmd, f)
			if err != nil {
				return err
			}
			return run(cfg, dir)
		},
	}
	root.PersistentFlags().StringVar(&f.config, "config", "", "config file (default ~/.config/splitview/config.toml)")
	root.Flags().BoolVar(&f.vertical, "vertical", false, "stack panes top to bottom")
	root.Flags().BoolVar(&f.reverse, "reverse", false, "lay panes out from the far end")
	root.Flags().BoolVar(&f.noWrap, "no-wrap", false, "render panes without the panel box")
	root.Flags().StringVar(&f.logLevel, "log-level", "", "log level (trace, debug, info, warn, error)")
	root.Flags().StringVar(&f.theme, "theme", "", "Chroma syntax theme")

	root.AddCommand(newJournalCmd(&f))
	return root
}

// loadConfig reads the config file and applies the flags the user set.
func loadConfig(cmd *cobra.Command, f flags) (*config.Config, error) {
	cfg, err := config.Load(f.config)
	if err != nil {
		return nil, err
	}
	fs := cmd.Flags()
	if fs.Changed("vertical") && f.vertical {
		cfg.Panel.Orientation = resize.Vertical.String()
	}
	if fs.Changed("reverse") {
		cfg.Panel.Reverse = f.reverse
	}
	if fs.Changed("no-wrap") {
		cfg.Panel.NoWrap = f.noWrap
	}
	if fs.Changed("log-level") {
		cfg.Log.Level = f.logLevel
	}
	if fs.Changed("theme") {
		cfg.UI.SyntaxTheme = f.theme
	}
	return cfg, cfg.Validate()
}

func journalPath(cfg *config.Config) (string, error) {
	if cfg.Journal.Path != "" {
		return cfg.Journal.Path, nil
	}
	dir, err := config.EnsureDataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "journal.db"), nil
}

func run(cfg *config.Config, dir string) error {
	logCfg, err := logging.ParseConfig(cfg.Log.Level, cfg.Log.File)
	if err != nil {
		return err
	}
	closer, err := logging.Setup(logCfg)
	if err != nil {
		return err
	}
	defer closer.Close()

	lister, err := filesearch.NewLister(dir)
	if err != nil {
		return err
	}
	renderer, err := highlight.NewRenderer(cfg.UI.SyntaxThemeOrDefault(), renderCacheSize)
	if err != nil {
		return err
	}

	var journal *store.Journal
	if !cfg.Journal.Disabled {
		path, err := journalPath(cfg)
		if err != nil {
			return err
		}
		if journal, err = store.Open(path, lister.Root()); err != nil {
			log.Warn().Err(err).Msg("journal unavailable, resizes will not be recorded")
			journal = nil
		}
	}
	defer journal.Close()

	m, err := tui.New(tui.Options{
		Lister:   lister,
		Renderer: renderer,
		Journal:  journal,
		Panel: split.Options{
			ID:          cfg.Panel.IDOrDefault(),
			Orientation: cfg.Panel.OrientationValue(),
			Reverse:     cfg.Panel.Reverse,
			NoWrap:      cfg.Panel.NoWrap,
		},
	})
	if err != nil {
		return err
	}

	log.Info().Str("root", lister.Root()).Str("session", journal.Session()).Msg("starting")
	p := tea.NewProgram(m, tea.WithFilter(tui.MouseEventFilter))
	_, runErr := p.Run()
	closeErr := m.Close()
	if err := m.FlushCursor(os.Stdout); err != nil {
		log.Warn().Err(err).Msg("restore pointer shape")
	}
	if runErr != nil {
		return fmt.Errorf("run: %w", runErr)
	}
	if err := m.Err(); err != nil {
		return err
	}
	return closeErr
}

func newJournalCmd(f *flags) *cobra.Command {
	var panes, recent int
	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Print the last recorded size of each pane",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(f.config)
			if err != nil {
				return err
			}
			path, err := journalPath(cfg)
			if err != nil {
				return err
			}
			j, err := store.OpenReadOnly(path)
			if err != nil {
				return err
			}
			defer j.Close()

			id := cfg.Panel.IDOrDefault()
			out := cmd.OutOrStdout()
			for i := range panes {
				r, ok, err := j.Last(id, i)
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintf(out, "%s pane %d: -\n", id, i+1)
					continue
				}
				fmt.Fprintf(out, "%s pane %d: %d×%d at %s\n", id, i+1, r.Width, r.Height, r.At.Format(time.DateTime))
			}

			rs, err := j.Recent(recent)
			if err != nil {
				return err
			}
			for _, r := range rs {
				fmt.Fprintf(out, "%s  %s pane %d: %d×%d\n", r.At.Format(time.DateTime), r.PanelID, r.Pane+1, r.Width, r.Height)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&panes, "panes", 4, "number of panes to report")
	cmd.Flags().IntVar(&recent, "recent", 0, "also list the most recent resizes")
	return cmd
}
