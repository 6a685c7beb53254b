package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"golang.org/x/xerrors"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/nexus-tools/nexus-bulk-upload/pkg/config"
	"github.com/nexus-tools/nexus-bulk-upload/pkg/nexus"
	"github.com/nexus-tools/nexus-bulk-upload/pkg/scanner"
	"github.com/nexus-tools/nexus-bulk-upload/pkg/uploader"
)

var (
	flagConfig string
	flagYes    bool
	flagDebug  bool
	flags      config.Config
)

var rootCmd = &cobra.Command{
	Use:           "nexus-bulk-upload",
	Short:         "Bulk-publish a directory tree into a Nexus repository",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return run(cmd.Context())
	},
}

func init() {
	rootCmd.Flags().StringVar(&flags.URL, "url", "", "Base URL of the repository service")
	rootCmd.Flags().StringVar(&flags.Repository, "repository", "", "Target repository name")
	rootCmd.Flags().StringVar(&flags.Dir, "dir", "", "Directory tree to publish")
	rootCmd.Flags().StringVar(&flags.Username, "username", "", "Basic auth username (optional)")
	rootCmd.Flags().StringVar(&flags.Password, "password", "", "Basic auth password (optional)")
	rootCmd.Flags().Int64Var(&flags.Limit, "limit", 0, fmt.Sprintf("Maximum in-flight uploads (default %d)", uploader.DefaultLimit))
	rootCmd.Flags().DurationVar((*time.Duration)(&flags.DrainTimeout), "drain-timeout", 0, "Bounded wait for in-flight uploads at the end of the run (default 30s)")
	rootCmd.Flags().StringVar(&flags.LogFile, "log-file", "", "Also write logs to this rotating file")
	rootCmd.Flags().StringVar(&flagConfig, "config", "", "YAML config file (flags win over file values)")
	rootCmd.Flags().BoolVar(&flagYes, "yes", false, "Skip the confirmation prompt")
	rootCmd.Flags().BoolVar(&flagDebug, "debug", false, "Enable debug logging")
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		log.Fatalf("%+v", err)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return xerrors.Errorf("config error: %w", err)
	}
	cfg.Merge(flags)

	setupLogging(cfg.LogFile)

	if cfg.URL == "" || cfg.Repository == "" || cfg.Dir == "" {
		return xerrors.New("--url, --repository and --dir are required")
	}
	info, err := os.Stat(cfg.Dir)
	if err != nil {
		return xerrors.Errorf("scan root error: %w", err)
	} else if !info.IsDir() {
		return xerrors.Errorf("scan root %s is not a directory", cfg.Dir)
	}

	client, err := nexus.NewClient(nexus.Option{
		BaseURL:  cfg.URL,
		Username: cfg.Username,
		Password: cfg.Password,
	})
	if err != nil {
		return xerrors.Errorf("client error: %w", err)
	}

	format, err := client.RepositoryFormat(ctx, cfg.Repository)
	if err != nil {
		return xerrors.Errorf("unable to determine repository format: %w", err)
	}
	slog.Info("Resolved repository", slog.String("name", cfg.Repository), slog.String("format", string(format)))

	analysis, err := scanner.Analyze(cfg.Dir)
	if err != nil {
		return xerrors.Errorf("pre-scan error: %w", err)
	}
	printAnalysis(analysis)

	if !flagYes {
		if err = confirm(analysis, string(format)); err != nil {
			return err
		}
	}

	u := uploader.New(client, cfg.Dir, uploader.Option{
		Repository:   cfg.Repository,
		Format:       format,
		Limit:        cfg.Limit,
		DrainTimeout: time.Duration(cfg.DrainTimeout),
		Progress:     true,
	})
	summary, err := u.Run(ctx)

	// The summary is printed even when some units failed.
	printSummary(summary)
	if err != nil {
		return xerrors.Errorf("upload run error: %w", err)
	}
	return nil
}

func setupLogging(logFile string) {
	var w io.Writer = os.Stderr
	if logFile != "" {
		w = io.MultiWriter(os.Stderr, &lumberjack.Logger{
			Filename:   logFile,
			MaxSize:    20, // megabytes
			MaxBackups: 3,
			MaxAge:     14, // days
		})
	}
	level := lo.Ternary(flagDebug, slog.LevelDebug, slog.LevelInfo)
	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
}

func printAnalysis(a scanner.Analysis) {
	fmt.Printf("File analysis:\n")
	fmt.Printf("  total files:              %d\n", a.Files)
	fmt.Printf("  descriptor (.pom) files:  %d\n", a.Descriptors)
	fmt.Printf("  archive (.jar) files:     %d\n", a.Archives)
	fmt.Printf("  checksum/signature files: %d (will be skipped)\n", a.Checksums)
	fmt.Printf("  snapshot versions:        %d\n", a.SnapshotFiles)
	fmt.Printf("  release versions:         %d\n", a.ReleaseFiles)
	if a.SnapshotFiles > 0 {
		slog.Warn("Found snapshot versions; they are skipped for maven2 repositories")
	}
}

func confirm(a scanner.Analysis, format string) error {
	fmt.Printf("Uploading %d files to a %s repository (skipping %d checksum files).\n",
		a.Files-a.Checksums, format, a.Checksums)
	fmt.Print("Press Enter to confirm and continue ... ")
	if _, err := bufio.NewReader(os.Stdin).ReadString('\n'); err != nil {
		return xerrors.Errorf("confirmation aborted: %w", err)
	}
	return nil
}

func printSummary(s uploader.Summary) {
	fmt.Printf("Upload completed:\n")
	fmt.Printf("  scanned:            %d\n", s.Scanned)
	fmt.Printf("  skipped signatures: %d\n", s.Signatures)
	fmt.Printf("  skipped snapshots:  %d\n", s.Snapshots)
	fmt.Printf("  queued:             %d\n", s.Queued)
	fmt.Printf("  succeeded:          %d\n", s.Succeeded)
	fmt.Printf("  failed:             %d\n", s.Failed)
	if s.TimedOut > 0 {
		fmt.Printf("  timed out:          %d\n", s.TimedOut)
	}
}
