package main

import (
	"github.com/scott-cotton/cli"
)

func MainCommand() *cli.Command {
	cfg := &MainConfig{}
	sOpts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	opts := append(sOpts, &cli.Opt{
		Name:        "o",
		Description: "output file (default stdout)",
		Type:        cli.NamedFuncOpt(cfg.outOpt, "(filepath)"),
	})

	return cli.NewCommandAt(&cfg.Main, "tomledit").
		WithSynopsis("tomledit [opts] command [opts]").
		WithDescription("tomledit edits TOML documents while keeping their layout and comments.").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return tMain(cfg, cc, args)
		}).
		WithSubs(
			NormalizeCommand(cfg),
			PatchCommand(cfg),
			JSONPatchCommand(cfg),
			ApplyCommand(cfg),
			GetCommand(cfg),
			ChangesCommand(cfg),
			DumpCommand(cfg),
			ServeCommand(cfg),
			WatchCommand(cfg),
			InitCommand(cfg))
}

func NormalizeCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &NormalizeConfig{MainConfig: mainCfg}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	return cli.NewCommandAt(&cfg.Normalize, "normalize").
		WithAliases("n", "fmt").
		WithSynopsis("normalize [-c] [files]").
		WithDescription("parse and re-serialize TOML documents").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return normalize(cfg, cc, args)
		})
}

func PatchCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &PatchConfig{MainConfig: mainCfg}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	cmd := cli.NewCommand("patch").
		WithAliases("p", "set").
		WithSynopsis("patch [-i] [-d] <paths> <values> [files]").
		WithDescription("set or delete keys; paths and values are comma separated lists, $undefined deletes").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return patch(cfg, cc, args)
		})
	cfg.Patch = cmd
	return cmd
}

func JSONPatchCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &JSONPatchConfig{MainConfig: mainCfg}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	cmd := cli.NewCommand("jsonpatch").
		WithAliases("jp").
		WithSynopsis("jsonpatch [-i] [-d] <patch.json> [files]").
		WithDescription("apply an RFC 6902 JSON Patch of scalar operations").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return jsonPatch(cfg, cc, args)
		})
	cfg.JSONPatch = cmd
	return cmd
}

func ApplyCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &ApplyConfig{MainConfig: mainCfg}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	cmd := cli.NewCommand("apply").
		WithAliases("a").
		WithSynopsis("apply [-i] [-d] <changes.yaml> [files]").
		WithDescription("apply a YAML change set mapping paths to values").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return apply(cfg, cc, args)
		})
	cfg.Apply = cmd
	return cmd
}

func GetCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &GetConfig{MainConfig: mainCfg, Format: "toml"}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	cmd := cli.NewCommand("get").
		WithAliases("g").
		WithSynopsis("get [-f toml|yaml|json] <path> [file]").
		WithDescription("print the item at a dotted path").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return get(cfg, cc, args)
		})
	cfg.Get = cmd
	return cmd
}

func ChangesCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &ChangesConfig{MainConfig: mainCfg}
	return cli.NewCommandAt(&cfg.Changes, "changes").
		WithAliases("c", "diff").
		WithSynopsis("changes <before.toml> <after.toml>").
		WithDescription("print the JSON Patch turning one document into another").
		WithRun(func(cc *cli.Context, args []string) error {
			return changes(cfg, cc, args)
		})
}

func DumpCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &DumpConfig{MainConfig: mainCfg}
	return cli.NewCommandAt(&cfg.Dump, "dump").
		WithSynopsis("dump [file]").
		WithDescription("print the parsed document tree").
		WithRun(func(cc *cli.Context, args []string) error {
			return dump(cfg, cc, args)
		})
}

func ServeCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &ServeConfig{MainConfig: mainCfg}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	return cli.NewCommandAt(&cfg.Serve, "serve").
		WithAliases("s").
		WithSynopsis("serve [-addr host:port]").
		WithDescription("serve normalize and patch over HTTP").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return serve(cfg, cc, args)
		})
}

func WatchCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &WatchConfig{MainConfig: mainCfg}
	return cli.NewCommandAt(&cfg.Watch, "watch").
		WithAliases("w").
		WithSynopsis("watch <changes.yaml> <file.toml>").
		WithDescription("re-apply a change set to a document whenever the change set is written").
		WithRun(func(cc *cli.Context, args []string) error {
			return watch(cfg, cc, args)
		})
}

func InitCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &InitConfig{MainConfig: mainCfg}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	return cli.NewCommandAt(&cfg.Init, "init").
		WithSynopsis("init [-f] <config.yaml>").
		WithDescription("write the default configuration file").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return initConfig(cfg, cc, args)
		})
}
