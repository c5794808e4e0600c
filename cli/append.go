package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/digitorus/pdfcertify"
	"github.com/digitorus/pdfcertify/auth"
	"github.com/digitorus/pdfcertify/config"
	"github.com/digitorus/pdfcertify/fonts"
	urfave "github.com/urfave/cli/v3"
)

const dateLayout = "2006-01-02"

func appendCommand() *urfave.Command {
	return &urfave.Command{
		Name:      "append",
		Usage:     "append a certification page to a PDF",
		ArgsUsage: "<input.pdf> [output.pdf|-]",
		Flags: []urfave.Flag{
			&urfave.StringFlag{Name: "signer", Usage: "signer printed on the certification page"},
			&urfave.StringFlag{Name: "date", Usage: "certification date (YYYY-MM-DD), defaults to today"},
			&urfave.StringFlag{Name: "pages", Usage: "page count text, defaults to the page count of the input"},
			&urfave.StringFlag{Name: "config", Value: config.DefaultLocation, Usage: "configuration file"},
			&urfave.StringFlag{Name: "user", Usage: "user name", Sources: urfave.EnvVars("PDFCERTIFY_USER")},
			&urfave.StringFlag{Name: "password", Usage: "password", Sources: urfave.EnvVars("PDFCERTIFY_PASSWORD")},
			&urfave.BoolFlag{Name: "verbose", Usage: "log debug output"},
		},
		Action: appendAction,
	}
}

func appendAction(ctx context.Context, cmd *urfave.Command) error {
	stdout, stderr := cmd.Root().Writer, cmd.Root().ErrWriter
	logger := newLogger(cmd.Bool("verbose"), stderr)
	defer func() {
		_ = logger.Sync()
	}()

	if cmd.NArg() < 1 {
		return fmt.Errorf("missing input file, usage: %s append %s", cmd.Root().Name, cmd.ArgsUsage)
	}
	input := cmd.Args().Get(0)

	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return err
	}

	verifier, err := newVerifier(cfg)
	if err != nil {
		return err
	}
	if err := verifier.Verify(ctx, cmd.String("user"), cmd.String("password")); err != nil {
		logger.Warn("authentication failed", zap.String("user", cmd.String("user")))
		return &userError{msg: "Usuario o contraseña incorrectos.", err: err}
	}

	doc, err := pdfcertify.OpenFile(input,
		pdfcertify.WithLogger(logger),
		pdfcertify.WithFallbackSize(pdfcertify.Size{Width: cfg.Page.FallbackWidth, Height: cfg.Page.FallbackHeight}),
	)
	if err != nil {
		return userErr(err)
	}

	date, err := parseDate(cmd.String("date"))
	if err != nil {
		return err
	}
	appearance, err := appearanceFromConfig(cfg)
	if err != nil {
		return err
	}

	doc.Certify().
		Appearance(appearance).
		Signer(cmd.String("signer")).
		Date(date).
		PageCount(cmd.String("pages"))

	var out bytes.Buffer
	result, err := doc.Write(&out)
	if err != nil {
		return userErr(err)
	}
	for _, w := range result.Warnings {
		fmt.Fprintln(stderr, pdfcertify.UserMessage(w))
	}

	output := cmd.Args().Get(1)
	if output == "-" {
		_, err := stdout.Write(out.Bytes())
		return err
	}
	if output == "" {
		output = pdfcertify.OutputName(input, cfg.Suffix)
	}
	if err := os.WriteFile(output, out.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	fmt.Fprintf(stdout, "PDF generado correctamente: %s (%d páginas)\n", output, result.Pages)
	return nil
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Now(), nil
	}
	t, err := time.ParseInLocation(dateLayout, s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}
	return t, nil
}

func newVerifier(cfg config.Config) (auth.Verifier, error) {
	if cfg.Auth.User == "" {
		return auth.Disabled, nil
	}
	return auth.NewStaticVerifier(cfg.Auth.User, cfg.Auth.PasswordHash)
}

func appearanceFromConfig(cfg config.Config) (pdfcertify.Appearance, error) {
	months, err := cfg.Months()
	if err != nil {
		return pdfcertify.Appearance{}, err
	}
	style, err := cfg.Style()
	if err != nil {
		return pdfcertify.Appearance{}, err
	}

	a := pdfcertify.Appearance{
		Title: cfg.Title,
		Labels: pdfcertify.Labels{
			Signer: cfg.Labels.Signer,
			Date:   cfg.Labels.Date,
			Pages:  cfg.Labels.Pages,
		},
		Months:    months,
		DateStyle: style,
		Margin:    cfg.Page.Margin,
	}

	if cfg.Fonts.Regular != "" {
		if a.BodyFont, err = fonts.Load(cfg.Fonts.Regular); err != nil {
			return pdfcertify.Appearance{}, err
		}
	}
	if cfg.Fonts.Bold != "" {
		if a.TitleFont, err = fonts.Load(cfg.Fonts.Bold); err != nil {
			return pdfcertify.Appearance{}, err
		}
	}
	return a, nil
}
