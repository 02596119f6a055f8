package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/systemstart/stepc/pkg/compiler"
	"github.com/systemstart/stepc/pkg/ir"
	"github.com/systemstart/stepc/pkg/logging"
)

var version = "dev"

const (
	_ = iota
	exitDotenvError
	exitCompileAborted
	exitDiagnosticErrors
)

var (
	configFile     string
	descriptorSet  string
	runtimeMapping string
	transport      string
	platform       string
	outputDir      string
	moduleName     string
	pluginHost     bool
	loggingType    string
	logLevel       string
	showVersion    bool
)

func init() {
	flag.StringVar(
		&configFile,
		"config",
		"",
		"pipeline configuration file (default: stepc.yaml in the working directory)")
	flag.StringVar(
		&descriptorSet,
		"descriptor-set",
		"",
		"serialized protocol descriptor bundle for gRPC binding")
	flag.StringVar(
		&runtimeMapping,
		"runtime-mapping",
		"",
		"runtime mapping YAML (module -> runtime, step -> module)")
	flag.StringVar(
		&transport,
		"transport",
		"",
		"transport override: GRPC, REST or LOCAL")
	flag.StringVar(
		&platform,
		"platform",
		"",
		"platform override: COMPUTE or FUNCTION")
	flag.StringVar(
		&outputDir,
		"output-dir",
		"",
		"generated artifact root override")
	flag.StringVar(
		&moduleName,
		"module-name",
		"",
		"compiling module name override")
	flag.BoolVar(
		&pluginHost,
		"plugin-host",
		false,
		"treat the compiling module as the plugin host")
	flag.StringVar(
		&loggingType,
		"logging-type",
		logging.DefaultType,
		"logging type: json, text or tint")
	flag.StringVar(
		&logLevel,
		"log-level",
		logging.DefaultLevel,
		"logging level: debug, info, warn, error")
	flag.BoolVar(
		&showVersion,
		"version",
		false,
		"print version and exit")
}

func main() {
	flag.Parse()

	if showVersion {
		fmt.Println(version)
		os.Exit(0)
	}

	_ = logging.Initialize(loggingType, logLevel)

	includeEnv()

	run := compiler.NewRun(buildOptions(), os.LookupEnv)
	run.ConfigPath = configFile
	run.DescriptorPath = descriptorSet
	run.MappingPath = runtimeMapping

	ctx, err := compiler.Compile(run)
	if err != nil {
		slog.Error("compilation aborted", "error", err)
		os.Exit(exitCompileAborted)
	}

	report(ctx)
}

// buildOptions maps explicit flags onto the processor option map, where they
// take precedence over environment variables and the config file.
func buildOptions() map[string]string {
	opts := map[string]string{}
	if transport != "" {
		opts[compiler.OptTransport] = transport
	}
	if platform != "" {
		opts[compiler.OptPlatform] = platform
	}
	if outputDir != "" {
		opts[compiler.OptOutputDir] = outputDir
	}
	if moduleName != "" {
		opts[compiler.OptModuleName] = moduleName
	}
	if pluginHost {
		opts[compiler.OptPluginHost] = "true"
	}
	return opts
}

// report prints every diagnostic to stdout for the invoking build tool and
// fails the build when any ERROR was reported.
func report(ctx *ir.Context) {
	for _, d := range ctx.Diags.Items() {
		fmt.Println(d.String())
	}

	errors := ctx.Diags.Count(ir.Error)
	warnings := ctx.Diags.Count(ir.Warning)
	slog.Info("compilation finished", "errors", errors, "warnings", warnings)

	if errors > 0 {
		os.Exit(exitDiagnosticErrors)
	}
}

func includeEnv() {
	err := godotenv.Load()
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Error("failed to load .env", "error", err)
			os.Exit(exitDotenvError)
		}
		slog.Debug("no .env file found")
	} else {
		slog.Info("using .env file")
	}
}
