package main

import (
	"context"
	"fmt"
	"os"

	"spots"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

type options struct {
	width, height int
	debug         string
	pages         int
}

func main() {
	var opts options

	root := &cobra.Command{
		Use:           "spots",
		Short:         "Lay out and browse declarative component files",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().IntVar(&opts.width, "width", 0, "container width (default: terminal width)")
	root.PersistentFlags().IntVar(&opts.height, "height", 0, "viewport height (default: terminal height)")
	root.PersistentFlags().StringVar(&opts.debug, "debug", "", "write debug log to `file`")

	view := &cobra.Command{
		Use:   "view FILE...",
		Short: "Browse the composed surface",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := setup(cmd.Context(), opts, args)
			if err != nil {
				return err
			}
			defer env.close()
			if !isatty.IsTerminal(os.Stdout.Fd()) {
				return dump(env)
			}
			return browse(env, opts)
		},
	}
	view.Flags().IntVar(&opts.pages, "pages", 3, "pages of items loaded on reaching the end")

	layout := &cobra.Command{
		Use:   "layout FILE...",
		Short: "Print component sizes and offsets",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := setup(cmd.Context(), opts, args)
			if err != nil {
				return err
			}
			defer env.close()
			fmt.Fprintln(cmd.OutOrStdout(), layoutTable(env.ctl))
			return nil
		},
	}

	check := &cobra.Command{
		Use:   "check FILE...",
		Short: "Report malformed fields and unknown kinds",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := setup(cmd.Context(), opts, args)
			if err != nil {
				return err
			}
			defer env.close()
			if len(env.warnings) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "ok")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), env.warnings)
			return fmt.Errorf("%d warnings", len(env.warnings))
		},
	}

	kinds := &cobra.Command{
		Use:   "kinds",
		Short: "List registered component and item kinds",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := spots.LoadConfig()
			if err != nil {
				return err
			}
			for _, k := range spots.DefaultRegistry(cfg.Layout).Kinds() {
				fmt.Fprintln(cmd.OutOrStdout(), k)
			}
			return nil
		},
	}

	root.AddCommand(view, layout, check, kinds)
	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "spots:", err)
		os.Exit(1)
	}
}

type env struct {
	cfg      spots.Config
	ctl      *spots.Controller
	warnings spots.Warnings
	logFile  *os.File
	handlers *edgeHandlers
}

func (e *env) close() {
	e.ctl.Close()
	if e.logFile != nil {
		e.logFile.Close()
	}
}

// setup loads config and files and mounts the components at the terminal
// size.
func setup(ctx context.Context, opts options, paths []string) (*env, error) {
	cfg, err := spots.LoadConfig()
	if err != nil {
		return nil, err
	}
	e := &env{cfg: cfg, handlers: &edgeHandlers{}}

	if opts.debug != "" || cfg.Debug {
		path := opts.debug
		if path == "" {
			path = "spots.log"
		}
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open debug log: %w", err)
		}
		e.logFile = f
		spots.SetLogger(spots.NewLogger(f))
	}

	docs, err := spots.LoadFiles(ctx, paths...)
	if err != nil {
		return nil, err
	}
	cs, ws := spots.Merge(docs)

	reg := spots.DefaultRegistry(cfg.Layout)
	e.warnings = append(ws, spots.CheckKinds(cs, reg)...)
	ctlOpts := []spots.ControllerOption{
		spots.WithContext(ctx),
		spots.OnReachEnd(e.handlers.end),
		spots.OnRefresh(e.handlers.refresh),
	}
	if cfg.Debug {
		ctlOpts = append(ctlOpts, spots.WithOwnerCheck())
	}
	e.ctl = spots.NewController(reg, cfg, ctlOpts...)

	w, h := 80, 24
	if tw, th, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		w, h = tw, th
	}
	if opts.width > 0 {
		w = opts.width
	}
	if opts.height > 0 {
		h = opts.height
	}
	if err := e.ctl.Resize(float64(w), float64(h-1), nil); err != nil {
		return nil, err
	}
	if err := e.ctl.SetComponents(cs, nil); err != nil {
		return nil, err
	}
	return e, nil
}

// dump prints the whole surface when stdout is not a terminal.
func dump(e *env) error {
	comp := e.ctl.Composer()
	total := comp.ContentSize().Height
	b := comp.Bounds()
	if err := e.ctl.Resize(b.Width, total, nil); err != nil {
		return err
	}
	fmt.Println(spots.Render(e.ctl))
	return nil
}
