package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"polyglot/internal/model"
	"polyglot/internal/service"
)

func newTranslateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "translate [text...]",
		Short: "Translate text once",
		Long: `Detect the language of the text and print it in all four languages.
Arguments are joined with spaces; without arguments the text is read from stdin.`,
		Example: `  polyglot translate 안녕하세요
  echo "Good morning" | polyglot translate`,
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			if len(args) == 0 {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("read stdin: %w", err)
				}
				text = string(data)
			}

			a, err := loadApp(cmd.Context(), opts, cmd.ErrOrStderr(), nil)
			if err != nil {
				return err
			}
			defer a.Close()
			return runTranslate(cmd.Context(), a.Translator, text, cmd.OutOrStdout())
		},
	}
}

func runTranslate(ctx context.Context, translator service.TranslationService, text string, out io.Writer) error {
	result, err := translator.Translate(ctx, text)
	if err != nil {
		return describeError(err)
	}
	writeResult(out, result)
	return nil
}

// writeResult prints the detected language and every catalog field.
func writeResult(out io.Writer, result *model.TranslationResult) {
	fmt.Fprintf(out, "Source: %s\n", result.SourceLanguage)
	for _, lang := range model.Languages() {
		fmt.Fprintf(out, "%s: %s\n", lang, result.Text(lang))
	}
}

func describeError(err error) error {
	var svcErr *service.ServiceError
	switch {
	case errors.As(err, &svcErr):
		return fmt.Errorf("%s (%s)", svcErr.Message(), svcErr.Kind)
	case errors.Is(err, service.ErrEmptyInput):
		return errors.New("text is required")
	default:
		return err
	}
}
