package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/autobrr/hldup/pkg/config"
	"github.com/autobrr/hldup/pkg/dedup"
	"github.com/autobrr/hldup/pkg/expression"
	"github.com/autobrr/hldup/pkg/logger"
	"github.com/autobrr/hldup/pkg/notification"
	"github.com/autobrr/hldup/pkg/policy"
	"github.com/autobrr/hldup/pkg/prompt"
	"github.com/autobrr/hldup/pkg/relink"
	"github.com/autobrr/hldup/pkg/scan"
	"github.com/autobrr/hldup/pkg/verify"
)

// RunDedup scans the roots in args (the working directory when empty) and
// hardlinks byte-identical files.
func RunDedup(cmd *cobra.Command, args []string) {
	ctx := cmd.Context()
	start := time.Now()

	// init core
	if !initialized {
		initCore(cmd.Flags(), true)
		initialized = true
	}

	// set log
	log := logger.GetLogger("dedup")

	noti := notification.NewDiscordSender(log, config.Config.Notifications)

	roots, err := resolveRoots(args)
	if err != nil {
		log.WithError(err).Fatal("Failed resolving roots")
	}

	mode, err := policy.ParseMode(config.Config.Mode)
	if err != nil {
		log.WithError(err).Fatal("Failed parsing mode")
	}

	bufferSize, err := config.Config.CompareBufferBytes()
	if err != nil {
		log.WithError(err).Fatal("Failed parsing compare buffer size")
	}

	ignore, err := expression.Compile(config.Config.Filters.Ignore)
	if err != nil {
		log.WithError(err).Fatal("Failed compiling ignore filters")
	} else if len(ignore) > 0 {
		log.Debugf("Compiled %d ignore filters", len(ignore))
	}

	fsys := afero.NewOsFs()

	// build hash cache
	log.Infof("Scanning %d roots: %q", len(roots), roots)
	cache, stats, err := scan.New(fsys, scan.Options{
		Ignore:  ignore,
		Workers: config.Config.Workers,
	}).Scan(ctx, roots)
	if err != nil {
		log.WithError(err).Error("Scan interrupted")
		return
	}

	log.WithField("size", humanize.IBytes(stats.Bytes)).
		Infof("Fingerprinted %d files (skipped: %d, ignored: %d, errors: %d)",
			stats.Files, stats.Skipped, stats.Ignored, stats.Errors)

	// link duplicates
	var prompter policy.Prompter
	if mode == policy.ModePrompt {
		prompter = prompt.NewConsole(os.Stdin, os.Stdout)
	}

	d := dedup.New(
		verify.New(fsys, bufferSize),
		policy.New(mode, prompter),
		relink.New(fsys, config.Config.BackupSuffix),
		log,
		dedup.Options{DryRun: config.Config.DryRun},
	)
	res := d.Run(ctx, cache)

	log.WithField("reclaimed_space", humanize.IBytes(res.ReclaimedBytes)).
		Infof("Linked %d pairs (groups: %d, pairs: %d, mismatched: %d, ineligible: %d, failed: %d)",
			res.Linked, res.Groups, res.Pairs, res.Mismatched, res.Ineligible, res.Failed)

	if err := ctx.Err(); err != nil {
		log.WithError(err).Warn("Run cancelled")
	}

	sendSummary(noti, log, res, time.Since(start))
}

// resolveRoots returns args, or the working directory when none were given.
func resolveRoots(args []string) ([]string, error) {
	if len(args) > 0 {
		return args, nil
	}

	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	return []string{wd}, nil
}

func summaryFields(noti notification.Sender, res dedup.Result) []notification.Field {
	fields := make([]notification.Field, 0, len(res.Links)+len(res.Failures))
	for _, l := range res.Links {
		fields = append(fields, noti.BuildField(notification.ActionLink, notification.BuildOptions{
			Left:      l.Left,
			Right:     l.Right,
			Size:      l.Size,
			Reclaimed: l.Reclaimed,
		}))
	}
	for _, f := range res.Failures {
		fields = append(fields, noti.BuildField(notification.ActionFailure, notification.BuildOptions{
			Left:  f.Left,
			Right: f.Right,
			Error: f.Err.Error(),
		}))
	}
	return fields
}

func summaryDescription(res dedup.Result) string {
	return fmt.Sprintf("Linked **%d** pairs across **%d** duplicate groups, reclaiming **%s**. Mismatched: %d, ineligible: %d, failed: %d",
		res.Linked, res.Groups, humanize.IBytes(res.ReclaimedBytes), res.Mismatched, res.Ineligible, res.Failed)
}

func sendSummary(noti notification.Sender, log *logrus.Entry, res dedup.Result, runTime time.Duration) {
	if !noti.CanSend() {
		return
	}

	if err := noti.Send("Hardlink Dedup", summaryDescription(res), runTime, summaryFields(noti, res), config.Config.DryRun); err != nil {
		log.WithError(err).Error("Failed sending notification")
	}
}
