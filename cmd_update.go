package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/huh/spinner"
	"github.com/creativeprojects/go-selfupdate"
	"github.com/rs/zerolog"

	"medclarify/tui"
)

// releaseRepository is the GitHub repository releases are published to
const releaseRepository = "medclarify/medclarify"

// isDevBuild reports whether the binary was built without release ldflags
func isDevBuild(v string) bool {
	return v == "" || v == "dev"
}

// runUpdate replaces the running binary with the latest release
func runUpdate(logger zerolog.Logger) int {
	if isDevBuild(version) {
		fmt.Println(tui.WarningStyle.Render("This is a development build; install a release to enable updates."))
		return 1
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	var (
		latest *selfupdate.Release
		found  bool
		err    error
	)
	spinErr := spinner.New().
		Title("Checking for updates...").
		Action(func() {
			latest, found, err = selfupdate.DetectLatest(ctx, selfupdate.ParseSlug(releaseRepository))
		}).
		Run()
	if spinErr != nil {
		err = spinErr
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, tui.ErrorStyle.Render("Error checking for updates: "+err.Error()))
		return 1
	}
	if !found {
		fmt.Fprintln(os.Stderr, tui.ErrorStyle.Render("No release found for this platform"))
		return 1
	}

	if latest.LessOrEqual(version) {
		fmt.Println(tui.SuccessStyle.Render(fmt.Sprintf("✅ medclarify %s is up to date", version)))
		return 0
	}

	exe, err := selfupdate.ExecutablePath()
	if err != nil {
		fmt.Fprintln(os.Stderr, tui.ErrorStyle.Render("Error locating executable: "+err.Error()))
		return 1
	}

	logger.Info().
		Str("from", version).
		Str("to", latest.Version()).
		Str("asset", latest.AssetName).
		Msg("updating")

	spinErr = spinner.New().
		Title(fmt.Sprintf("Downloading medclarify %s...", latest.Version())).
		Action(func() {
			err = selfupdate.UpdateTo(ctx, latest.AssetURL, latest.AssetName, exe)
		}).
		Run()
	if spinErr != nil {
		err = spinErr
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, tui.ErrorStyle.Render("Error updating: "+err.Error()))
		return 1
	}

	fmt.Println(tui.SuccessStyle.Render(fmt.Sprintf("✅ Updated to medclarify %s", latest.Version())))
	return 0
}
