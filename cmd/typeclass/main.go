package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/mattn/go-isatty"

	"github.com/reoring/typeclass"
	"github.com/reoring/typeclass/decl"
	"github.com/reoring/typeclass/i18n"
	"github.com/reoring/typeclass/internal/inspect"
)

var (
	errUsage       = errors.New("usage")
	errIssuesFound = errors.New("issues found")
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	var err error
	switch os.Args[1] {
	case "describe":
		err = describeCmd(os.Args[2:], os.Stdout)
	case "check":
		err = checkCmd(os.Args[2:], os.Stdout)
	case "convert":
		err = convertCmd(os.Args[2:], os.Stdout)
	default:
		usage()
		os.Exit(2)
	}
	switch {
	case err == nil:
	case errors.Is(err, errUsage), errors.Is(err, flag.ErrHelp):
		os.Exit(2)
	case errors.Is(err, errIssuesFound):
		os.Exit(1)
	default:
		fatalf("%v", err)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "typeclass CLI\n\nUsage:\n  typeclass describe -f contracts.yaml [-contract name] [-json]\n  typeclass check -f contracts.yaml -pkg ./path/to/pkg -type TypeName [-contract name] [-value-only] [-lang ja] [-v]\n  typeclass convert -f contracts.yaml -o contracts.json\n\nNotes:\n  - describe prints the dispatch table layout: one slot per operation, then destroy, clone and move-clone.\n  - check reads Go source only; nothing is compiled or run.")
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}

type slotView struct {
	Index     int    `json:"index"`
	Kind      string `json:"kind"`
	Signature string `json:"signature,omitempty"`
}

type tableView struct {
	Contract string     `json:"contract"`
	ID       string     `json:"id"`
	Slots    []slotView `json:"slots"`
}

func describeTable(c *typeclass.Contract) tableView {
	n := c.Len()
	v := tableView{Contract: c.Name(), ID: c.ID().String(), Slots: make([]slotView, 0, typeclass.SlotCount(n))}
	for i, op := range c.Operations() {
		v.Slots = append(v.Slots, slotView{Index: i, Kind: "operation", Signature: op.Signature()})
	}
	v.Slots = append(v.Slots,
		slotView{Index: typeclass.DestroySlot(n), Kind: "destroy"},
		slotView{Index: typeclass.CloneSlot(n), Kind: "clone"},
		slotView{Index: typeclass.MoveCloneSlot(n), Kind: "move-clone"},
	)
	return v
}

func describeCmd(args []string, w io.Writer) error {
	fs := flag.NewFlagSet("describe", flag.ContinueOnError)
	var file, only string
	var asJSON bool
	fs.StringVar(&file, "f", "", "contract declaration file (.yaml or .json)")
	fs.StringVar(&only, "contract", "", "describe only this contract")
	fs.BoolVar(&asJSON, "json", false, "print JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if file == "" {
		fs.Usage()
		return errUsage
	}
	cs, err := decl.LoadContracts(file, nil)
	if err != nil {
		return err
	}
	var views []tableView
	for _, c := range cs {
		if only == "" || c.Name() == only {
			views = append(views, describeTable(c))
		}
	}
	if len(views) == 0 {
		return fmt.Errorf("describe: no contract named %q in %s", only, file)
	}
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(views)
	}
	p := newPainter(w)
	for _, v := range views {
		fmt.Fprintf(w, "%s %s\n", p.bold(v.Contract), p.dim("id="+v.ID))
		for _, s := range v.Slots {
			label := s.Signature
			if s.Kind != "operation" {
				label = p.dim("<" + s.Kind + ">")
			}
			fmt.Fprintf(w, "  [%d] %s\n", s.Index, label)
		}
	}
	return nil
}

func checkCmd(args []string, w io.Writer) error {
	fs := flag.NewFlagSet("check", flag.ContinueOnError)
	var file, pkg, dir, typeName, only, lang string
	var valueOnly, verbose bool
	fs.StringVar(&file, "f", "", "contract declaration file (.yaml or .json)")
	fs.StringVar(&pkg, "pkg", "", "package pattern containing the type (e.g. ./internal/shapes)")
	fs.StringVar(&dir, "dir", ".", "directory the package pattern is resolved from")
	fs.StringVar(&typeName, "type", "", "type name to check")
	fs.StringVar(&only, "contract", "", "contract name (required when the file declares several)")
	fs.BoolVar(&valueOnly, "value-only", false, "ignore methods with pointer receivers")
	fs.StringVar(&lang, "lang", "en", "message language (en or ja)")
	fs.BoolVar(&verbose, "v", false, "enable verbose logs")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if file == "" || pkg == "" || typeName == "" {
		fs.Usage()
		return errUsage
	}
	logf := func(format string, a ...any) {
		if verbose {
			fmt.Fprintf(os.Stderr, format+"\n", a...)
		}
	}
	i18n.SetLanguage(lang)

	docs, err := decl.Load(file)
	if err != nil {
		return err
	}
	doc, err := pickDocument(docs, only)
	if err != nil {
		return err
	}
	// resolving the declaration catches unknown type names before loading source
	if _, err := doc.Contract(nil); err != nil {
		return fmt.Errorf("check: contract %s: %w", doc.Name, err)
	}
	logf("check: file=%s contract=%s pkg=%s type=%s", file, doc.Name, pkg, typeName)

	ti, err := inspect.Load(dir, pkg, typeName)
	if err != nil {
		return err
	}
	logf("loaded %s.%s with %d exported methods", ti.PkgPath, ti.Name, len(ti.Methods))

	p := newPainter(w)
	iss := inspect.Check(ti, doc, valueOnly)
	if len(iss) == 0 {
		fmt.Fprintf(w, "%s %s.%s satisfies %s\n", p.green("ok"), ti.PkgPath, ti.Name, doc.Name)
		return nil
	}
	for _, it := range iss {
		line := fmt.Sprintf("%s %s: %s", p.red(it.Code), it.Path, it.Message)
		if it.Hint != "" {
			line += p.dim(" (" + it.Hint + ")")
		}
		fmt.Fprintln(w, line)
	}
	fmt.Fprintf(w, "%s %s.%s does not satisfy %s: %d issue(s)\n", p.red("FAIL"), ti.PkgPath, ti.Name, doc.Name, len(iss))
	return errIssuesFound
}

func pickDocument(docs []decl.Document, name string) (decl.Document, error) {
	if name == "" {
		if len(docs) != 1 {
			return decl.Document{}, fmt.Errorf("check: file declares %d contracts; pick one with -contract", len(docs))
		}
		return docs[0], nil
	}
	for _, d := range docs {
		if d.Name == name {
			return d, nil
		}
	}
	return decl.Document{}, fmt.Errorf("check: no contract named %q", name)
}

func convertCmd(args []string, w io.Writer) error {
	fs := flag.NewFlagSet("convert", flag.ContinueOnError)
	var in, out, format string
	fs.StringVar(&in, "f", "", "input declaration file (.yaml or .json)")
	fs.StringVar(&out, "o", "", "output file; - writes to stdout")
	fs.StringVar(&format, "format", "", "output format (yaml or json); defaults to the output extension")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if in == "" || out == "" {
		fs.Usage()
		return errUsage
	}
	docs, err := decl.Load(in)
	if err != nil {
		return err
	}
	if _, err := decl.Contracts(docs, nil); err != nil {
		return err
	}
	if format == "" {
		format = "yaml"
		if strings.EqualFold(filepath.Ext(out), ".json") {
			format = "json"
		}
	}
	var encode func(io.Writer, ...decl.Document) error
	switch format {
	case "json":
		encode = decl.EncodeJSON
	case "yaml":
		encode = decl.EncodeYAML
	default:
		return fmt.Errorf("convert: unknown format %q", format)
	}
	if out == "-" {
		return encode(w, docs...)
	}
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return fmt.Errorf("creating output dir: %w", err)
	}
	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	if err := encode(f, docs...); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	return nil
}

// painter colors output only when it goes to a terminal and NO_COLOR is
// unset.
type painter struct{ on bool }

func newPainter(w io.Writer) painter {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return painter{}
	}
	f, ok := w.(*os.File)
	if !ok {
		return painter{}
	}
	return painter{on: isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())}
}

func (p painter) wrap(code, s string) string {
	if !p.on {
		return s
	}
	return "\x1b[" + code + "m" + s + "\x1b[0m"
}

func (p painter) bold(s string) string  { return p.wrap("1", s) }
func (p painter) dim(s string) string   { return p.wrap("2", s) }
func (p painter) red(s string) string   { return p.wrap("31", s) }
func (p painter) green(s string) string { return p.wrap("32", s) }
