package main

import (
	"fmt"
	"os"

	"github.com/achilleasa/wbvh/cmd"
	"github.com/urfave/cli"
)

func main() {
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version",
		Usage: "print only the version",
	}

	app := cli.NewApp()
	app.Name = "wbvh"
	app.Usage = "build wide SAH bounding volume hierarchies for triangle scenes"
	app.Version = "0.0.1"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
		cli.BoolFlag{
			Name:  "vv",
			Usage: "enable even more verbose logging",
		},
		cli.StringFlag{
			Name:  "config, c",
			Usage: "load builder settings from a toml or yaml profile",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:  "build",
			Usage: "build BVH trees for a set of scene files",
			Description: `
Parse the geometry of each wavefront obj file, build a 4-wide BVH tree for
every mesh and a top-level BVH tree over the mesh bounds and display the
tree statistics.

Builder settings are loaded from the profile specified via the global --config
flag and may be overridden using the command flags.`,
			ArgsUsage: "scene_file1.obj scene_file2.obj ...",
			Flags:     cmd.BuildFlags,
			Action:    cmd.BuildScene,
		},
		{
			Name:      "tree",
			Usage:     "print an outline of the BVH trees for a scene file",
			ArgsUsage: "scene_file.obj",
			Flags:     append(append([]cli.Flag{}, cmd.TreeFlags...), cmd.BuildFlags...),
			Action:    cmd.PrintTree,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err.Error())
		os.Exit(1)
	}
}
