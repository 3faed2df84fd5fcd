package main

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"

	"gopkg.in/yaml.v2"

	"github.com/loopcontext/langsync"
	"github.com/loopcontext/langsync/internal/logging"
)

// extractConfig holds flags for the extract command.
type extractConfig struct {
	settings
	out    string
	format string
}

func usageExtract(fs *flag.FlagSet) func() {
	return func() {
		fmt.Fprintf(os.Stderr, `usage: langsync extract [options]

Extract lists the keys used by lookup calls under -root together with their
default values. Nothing is written to any locale store.

Formats:
  - tsv:  key<TAB>default per line, in discovery order (default).
  - keys: unique keys only, one per line, sorted.
  - yaml: key: default mapping, in discovery order.

Flags:
`)
		fs.PrintDefaults()
	}
}

func parseExtractFlags(args []string) (*extractConfig, error) {
	fs := flag.NewFlagSet("extract", flag.ExitOnError)
	fs.Usage = usageExtract(fs)
	var (
		common commonFlags
		cfg    extractConfig
	)
	common.register(fs)
	fs.StringVar(&cfg.out, "out", "", "Output file. Default stdout.")
	fs.StringVar(&cfg.format, "format", "tsv", "Output format: 'tsv', 'keys' or 'yaml'.")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	switch cfg.format {
	case "tsv", "keys", "yaml":
	default:
		return nil, fmt.Errorf("extract: unknown format %q", cfg.format)
	}
	s, _, err := common.resolve(fs)
	if err != nil {
		return nil, err
	}
	cfg.settings = s
	return &cfg, nil
}

func runExtract(cfg *extractConfig, w io.Writer) error {
	extractorCfg := cfg.extractorConfig()
	extractorCfg.Logger = logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	extractor, err := langsync.NewExtractor(extractorCfg)
	if err != nil {
		return err
	}
	usages := extractor.Extract(cfg.Root)

	out, err := formatUsages(usages, cfg.format)
	if err != nil {
		return err
	}
	if cfg.out != "" {
		if err := os.WriteFile(cfg.out, out, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", cfg.out, err)
		}
		return nil
	}
	_, err = w.Write(out)
	return err
}

func formatUsages(usages *langsync.Usages, format string) ([]byte, error) {
	var b bytes.Buffer
	switch format {
	case "keys":
		keys := usages.Keys()
		sort.Strings(keys)
		for _, k := range keys {
			b.WriteString(k)
			b.WriteByte('\n')
		}
	case "yaml":
		doc := yaml.MapSlice{}
		for _, rec := range usages.Records() {
			doc = append(doc, yaml.MapItem{Key: rec.Key, Value: rec.Default})
		}
		if len(doc) == 0 {
			return []byte("{}\n"), nil
		}
		out, err := yaml.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("marshal usages: %w", err)
		}
		return out, nil
	default:
		for _, rec := range usages.Records() {
			b.WriteString(rec.Key)
			b.WriteByte('\t')
			b.WriteString(rec.Default)
			b.WriteByte('\n')
		}
	}
	return b.Bytes(), nil
}
