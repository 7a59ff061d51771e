// Command htsview prints the contents of an hts store, either as a colored
// tree or as a YAML document.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/goccy/go-yaml"
	"github.com/hdstore/hts/hts"
	"github.com/lmittmann/tint"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
)

var (
	groupColor = color.New(color.FgCyan, color.Bold).SprintFunc()
	dsColor    = color.New(color.FgGreen).SprintFunc()
	attrColor  = color.New(color.FgHiBlack).SprintFunc()
)

func main() {
	if err := mainImpl(); err != nil {
		fmt.Fprintf(os.Stderr, "htsview: %v\n", err)
		os.Exit(1)
	}
}

func mainImpl() error {
	bolt := flag.Bool("bolt", false, "Open the file with the bolt backend")
	asYAML := flag.Bool("yaml", false, "Dump the hierarchy as a YAML document")
	logLevel := flag.String("log-level", "warn", "Log level (debug, info, warn, error)")
	flag.Parse()
	if flag.NArg() != 1 {
		return fmt.Errorf("usage: htsview [-bolt] [-yaml] <file>")
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(*logLevel)); err != nil {
		return fmt.Errorf("bad -log-level: %w", err)
	}
	logger := slog.New(tint.NewHandler(colorable.NewColorable(os.Stderr), &tint.Options{
		Level:      level,
		TimeFormat: "15:04:05.000",
		NoColor:    !isatty.IsTerminal(os.Stderr.Fd()),
	}))
	slog.SetDefault(logger)

	path := flag.Arg(0)
	var opts []hts.Option
	if *bolt {
		opts = append(opts, hts.WithBoltBackend())
	}

	f, err := hts.Open(path, opts...)
	if err != nil {
		return err
	}
	defer f.Close()
	slog.Debug("opened store", "path", path, "mode", f.Mode())

	if *asYAML {
		doc, err := buildDoc(f.Root())
		if err != nil {
			return err
		}
		out, err := yaml.Marshal(doc)
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(out)
		return err
	}
	return printTree(f.Root(), 0)
}

// printTree renders a node and its subtree with two-space indentation.
func printTree(n *hts.Node, depth int) error {
	indent := strings.Repeat("  ", depth)

	isGroup, err := n.IsGroup()
	if err != nil {
		return err
	}

	if isGroup {
		fmt.Printf("%s%s\n", indent, groupColor(n.Name()+"/"))
	} else {
		d, err := n.Datatype()
		if err != nil {
			return err
		}
		v, err := n.Read()
		if err != nil {
			return err
		}
		shape := "scalar"
		if dims, err := n.Dimensions(); err == nil && dims != nil {
			shape = fmt.Sprintf("%v", dims)
		}
		fmt.Printf("%s%s  %s %s = %s\n", indent, dsColor(n.Name()), d.Class, shape, formatValue(v))
	}

	if err := printAttrs(n, indent); err != nil {
		return err
	}
	if !isGroup {
		return nil
	}

	members, err := n.Members()
	if err != nil {
		return err
	}
	for _, name := range sortedKeys(members) {
		if err := printTree(members[name], depth+1); err != nil {
			return err
		}
	}
	return nil
}

func printAttrs(n *hts.Node, indent string) error {
	attrs, err := n.Attributes()
	if err != nil {
		return err
	}
	for _, name := range sortedKeys(attrs) {
		v, err := attrs[name].Read()
		if err != nil {
			return err
		}
		fmt.Printf("%s  %s\n", indent, attrColor(fmt.Sprintf("@%s = %s", name, formatValue(v))))
	}
	return nil
}

func formatValue(v hts.Value) string {
	switch x := v.(type) {
	case hts.String:
		return fmt.Sprintf("%q", string(x))
	case hts.Ref:
		return "-> " + x.Path
	case hts.Opaque:
		return fmt.Sprintf("opaque(%s, %d bytes)", x.Tag, len(x.Data))
	case hts.Unsupported:
		return "unsupported: " + x.Reason
	default:
		return fmt.Sprintf("%v", v)
	}
}

// buildDoc converts a subtree into plain maps and slices for YAML output.
// Group members and attributes share one namespace per node; attributes are
// prefixed with "@" to keep them apart.
func buildDoc(n *hts.Node) (any, error) {
	isGroup, err := n.IsGroup()
	if err != nil {
		return nil, err
	}

	if !isGroup {
		v, err := n.Read()
		if err != nil {
			return nil, err
		}
		leaf := valueDoc(v)
		attrs, err := attrDoc(n)
		if err != nil {
			return nil, err
		}
		if len(attrs) == 0 {
			return leaf, nil
		}
		attrs["value"] = leaf
		return attrs, nil
	}

	doc, err := attrDoc(n)
	if err != nil {
		return nil, err
	}
	members, err := n.Members()
	if err != nil {
		return nil, err
	}
	for _, name := range sortedKeys(members) {
		child, err := buildDoc(members[name])
		if err != nil {
			return nil, err
		}
		doc[name] = child
	}
	return doc, nil
}

func attrDoc(n *hts.Node) (map[string]any, error) {
	attrs, err := n.Attributes()
	if err != nil {
		return nil, err
	}
	doc := make(map[string]any, len(attrs))
	for name, a := range attrs {
		v, err := a.Read()
		if err != nil {
			return nil, err
		}
		doc["@"+name] = valueDoc(v)
	}
	return doc, nil
}

func valueDoc(v hts.Value) any {
	switch x := v.(type) {
	case hts.String:
		return string(x)
	case hts.Int:
		return int64(x)
	case hts.Float:
		return float64(x)
	case hts.Strings:
		return []string(x)
	case hts.Ints:
		return []int64(x)
	case hts.Floats:
		return []float64(x)
	case hts.Ref:
		return map[string]any{"ref": x.Path}
	case hts.Opaque:
		return map[string]any{"tag": x.Tag, "size": len(x.Data)}
	case hts.Unsupported:
		return map[string]any{"unsupported": x.Reason}
	default:
		return nil
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
