// Command fnxml tokenizes an XML document and prints the event stream, the
// diagnostics, or the re-rendered document.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"golang.org/x/net/html/charset"
	"gopkg.in/yaml.v2"

	"github.com/fnxml/fnxml"
)

// fileConfig is the YAML shape of a tokenizer configuration file.
type fileConfig struct {
	Edition         int      `yaml:"edition"`
	Mode            string   `yaml:"mode"`
	RawTextElements []string `yaml:"raw_text_elements"`
	Disable         []string `yaml:"disable"`
	Positions       string   `yaml:"positions"`
	DecodeEntities  *bool    `yaml:"decode_attr_entities"`
}

var disableKinds = map[string]fnxml.Kind{
	"space":                  fnxml.KindSpace,
	"comment":                fnxml.KindComment,
	"cdata":                  fnxml.KindCData,
	"prolog":                 fnxml.KindProlog,
	"characters":             fnxml.KindCharacters,
	"processing_instruction": fnxml.KindProcInst,
}

func (fc *fileConfig) toConfig() (fnxml.Config, error) {
	var cfg fnxml.Config
	switch fc.Edition {
	case 0, 5:
	case 4:
		cfg.Edition = fnxml.Edition4
	default:
		return cfg, fmt.Errorf("unknown edition %d", fc.Edition)
	}
	switch fc.Mode {
	case "", "xml":
	case "html":
		cfg.Mode = fnxml.ModeHTML
	default:
		return cfg, fmt.Errorf("unknown mode %q", fc.Mode)
	}
	cfg.RawTextElements = fc.RawTextElements
	for _, name := range fc.Disable {
		kind, ok := disableKinds[name]
		if !ok {
			return cfg, fmt.Errorf("unknown event kind %q in disable list", name)
		}
		cfg.Disable |= fnxml.SetOf(kind)
	}
	switch fc.Positions {
	case "", "full":
	case "none":
		cfg.NoPositions = true
	default:
		return cfg, fmt.Errorf("unknown positions setting %q", fc.Positions)
	}
	if fc.DecodeEntities != nil && !*fc.DecodeEntities {
		cfg.RawAttributeValues = true
	}
	return cfg, nil
}

func main() {
	configPath := flag.String("config", "", "YAML tokenizer configuration file")
	html := flag.Bool("html", false, "tokenize in HTML mode")
	validate := flag.Bool("validate", false, "run the validator stack and print diagnostics")
	render := flag.Bool("render", false, "serialize the event stream back to XML")
	sortAttrs := flag.Bool("sort", false, "with -render, write attributes in canonical order")
	chunkSize := flag.Int("chunk", 16*1024, "input chunk size in bytes")
	flag.Parse()

	var cfg fnxml.Config
	if *configPath != "" {
		raw, err := os.ReadFile(*configPath)
		if err != nil {
			die(err)
		}
		var fc fileConfig
		if err := yaml.UnmarshalStrict(raw, &fc); err != nil {
			die(err)
		}
		if cfg, err = fc.toConfig(); err != nil {
			die(err)
		}
	}
	if *html {
		cfg.Mode = fnxml.ModeHTML
	}

	in := io.Reader(os.Stdin)
	if flag.NArg() > 0 {
		f, err := os.Open(flag.Arg(0))
		if err != nil {
			die(err)
		}
		defer f.Close()
		in = f
	}
	decoded, err := charset.NewReader(in, "")
	if err != nil {
		die(err)
	}

	src := fnxml.NormalizeChunks(fnxml.ReaderChunks(decoded, *chunkSize))
	tok := fnxml.NewStreamTokenizer(src, cfg)

	switch {
	case *render:
		err = fnxml.Render(os.Stdout, tok, fnxml.RenderOptions{SortAttributes: *sortAttrs})
	case *validate:
		err = printDiagnostics(tok, cfg)
	default:
		err = printEvents(tok)
	}
	if err != nil {
		die(err)
	}
}

func printDiagnostics(tok fnxml.EventReader, cfg fnxml.Config) error {
	r := fnxml.Pipeline(tok,
		fnxml.UniqueAttrs(fnxml.PolicyEmit),
		fnxml.ValidChars(fnxml.PolicyEmit, fnxml.CharOptions{Edition: cfg.Edition}),
		fnxml.WellFormed(fnxml.PolicyEmit),
		fnxml.Resolve(fnxml.ResolverOptions{}),
	)
	count := 0
	for {
		ev, err := r.Next()
		if err != nil {
			if err == io.EOF {
				break
			}
			return err
		}
		if ev.Kind == fnxml.KindError {
			count++
			fmt.Println(ev.Err)
		}
	}
	if count > 0 {
		os.Exit(1)
	}
	return nil
}

func printEvents(tok fnxml.EventReader) error {
	for {
		ev, err := tok.Next()
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
		fmt.Printf("%s\t%s", ev.Pos, ev.Kind)
		switch ev.Kind {
		case fnxml.KindStartElement, fnxml.KindEndElement, fnxml.KindProcInst, fnxml.KindProlog:
			fmt.Printf("\t%s", ev.Name)
			for _, a := range ev.Attrs {
				fmt.Printf(" %s=%q", a.Name, a.Value)
			}
		case fnxml.KindError:
			fmt.Printf("\t%s", ev.Err)
		default:
			fmt.Printf("\t%q", ev.Data)
		}
		fmt.Println()
	}
}

func die(err error) {
	fmt.Fprintln(os.Stderr, "fnxml:", err)
	os.Exit(1)
}
