// Command bitpack validates bit-packed record schemas, generates Go and WIT
// source from them, and packs or unpacks records from the command line.
package main

import (
	"os"

	"github.com/alecthomas/kong"
	"go.uber.org/zap"

	"github.com/wippyai/bitpack/codegen"
	"github.com/wippyai/bitpack/layout"
	"github.com/wippyai/bitpack/loader"
	"github.com/wippyai/bitpack/schema"
	"github.com/wippyai/bitpack/transcoder"
)

const version = "0.1.0"

// Globals are flags shared by every command.
type Globals struct {
	LogLevel  string `name:"log-level" env:"BITPACK_LOG_LEVEL" default:"warn" enum:"debug,info,warn,error" help:"Log level (${enum})."`
	LogFormat string `name:"log-format" env:"BITPACK_LOG_FORMAT" default:"console" enum:"console,json" help:"Log encoding (${enum})."`
	Format    string `name:"format" short:"f" default:"" help:"Schema format: xml or yaml. Detected from the file when empty."`
	Name      string `name:"name" help:"Schema name. Defaults to the file name."`

	log *zap.Logger
}

// CLI is the command-line interface of bitpack.
type CLI struct {
	Globals

	Check   CheckCmd   `cmd:"" help:"Validate a schema and resolve every layout"`
	Layout  LayoutCmd  `cmd:"" help:"Print the word map of a struct"`
	Gen     GenCmd     `cmd:"" help:"Generate Go source"`
	WIT     WITCmd     `cmd:"" name:"wit" help:"Generate WIT type definitions"`
	Hash    HashCmd    `cmd:"" help:"Print the schema fingerprint"`
	Pack    PackCmd    `cmd:"" help:"Pack field values into a buffer"`
	Unpack  UnpackCmd  `cmd:"" help:"Unpack and print a buffer"`
	Inspect InspectCmd `cmd:"" help:"Decode and edit buffers interactively"`
	Version VersionCmd `cmd:"" help:"Print version information"`
}

// logger builds the zap logger described by the log flags.
func (g *Globals) logger() (*zap.Logger, error) {
	level, err := zap.ParseAtomicLevel(g.LogLevel)
	if err != nil {
		return nil, err
	}
	cfg := zap.NewProductionConfig()
	if g.LogFormat == "console" {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = level
	cfg.DisableStacktrace = true
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	return cfg.Build()
}

// AfterApply installs the logger in every package before a command runs.
func (g *Globals) AfterApply() error {
	l, err := g.logger()
	if err != nil {
		return err
	}
	g.log = l
	installLogger(l)
	return nil
}

func installLogger(l *zap.Logger) {
	layout.SetLogger(l.Named("layout"))
	loader.SetLogger(l.Named("loader"))
	transcoder.SetLogger(l.Named("transcoder"))
	codegen.SetLogger(l.Named("codegen"))
}

// Log returns the command logger, a no-op before flags are applied.
func (g *Globals) Log() *zap.Logger {
	if g.log == nil {
		return zap.NewNop()
	}
	return g.log
}

func (g *Globals) load(path string) (*schema.Schema, error) {
	format, err := loader.ParseFormat(g.Format)
	if err != nil {
		return nil, err
	}
	return loader.LoadFile(path, loader.Options{Name: g.Name, Format: format})
}

func newParser(cli *CLI, options ...kong.Option) (*kong.Kong, error) {
	options = append([]kong.Option{
		kong.Name("bitpack"),
		kong.Description("Bit-packed record schema compiler"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{Compact: true}),
		kong.Configuration(kong.JSON, "./.bitpack.json", "~/.config/bitpack/config.json"),
	}, options...)
	return kong.New(cli, options...)
}

func main() {
	var cli CLI
	parser, err := newParser(&cli)
	if err != nil {
		panic(err)
	}
	ctx, err := parser.Parse(os.Args[1:])
	parser.FatalIfErrorf(err)
	err = ctx.Run(&cli.Globals)
	_ = cli.Log().Sync()
	ctx.FatalIfErrorf(err)
}
