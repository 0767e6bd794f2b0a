package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/zdunecki/qrwizard/pkg/cli"
	"github.com/zdunecki/qrwizard/pkg/design"
	"github.com/zdunecki/qrwizard/pkg/qrtypes"
)

var (
	renderType       string
	renderFields     map[string]string
	renderDesignFile string
	renderOutput     string
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render a QR code once without the wizard",
	Example: `  qrwizard render --type url --field url=https://example.com -o site.svg
  qrwizard render --type wifi --field ssid=home --field password=secret --design style.json`,
	RunE: runRender,
}

func runRender(cmd *cobra.Command, args []string) error {
	types, err := loadTypes(cfg)
	if err != nil {
		return err
	}
	t, err := types.Get(renderType)
	if err != nil {
		return err
	}

	data := t.Defaults()
	for k, v := range renderFields {
		data[k] = v
		if f, ok := t.Field(k); ok && f.Type == qrtypes.FieldBoolean {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("field %s: %w", k, err)
			}
			data[k] = b
		}
	}
	if err := t.Validate(data); err != nil {
		return err
	}

	var style *design.Config
	if renderDesignFile != "" {
		raw, err := os.ReadFile(renderDesignFile)
		if err != nil {
			return fmt.Errorf("read design: %w", err)
		}
		style = &design.Config{}
		if err := json.Unmarshal(raw, style); err != nil {
			return fmt.Errorf("parse design %s: %w", renderDesignFile, err)
		}
	}

	engine := newEngine(cfg, logger)
	defer engine.Close()
	return cli.Render(engine, cli.RenderOptions{
		Type:   t.ID,
		Data:   data,
		Design: style,
		Output: renderOutput,
	}, func(format string, a ...interface{}) {
		fmt.Fprintf(cmd.OutOrStdout(), format, a...)
	})
}

func init() {
	renderCmd.Flags().StringVarP(&renderType, "type", "t", "", "QR type, see qrwizard types")
	renderCmd.Flags().StringToStringVarP(&renderFields, "field", "f", nil, "Content field as key=value (repeatable)")
	renderCmd.Flags().StringVar(&renderDesignFile, "design", "", "Design config JSON file")
	renderCmd.Flags().StringVarP(&renderOutput, "output", "o", "qr-code.svg", "Output file")
	renderCmd.MarkFlagRequired("type")
	rootCmd.AddCommand(renderCmd)
}
