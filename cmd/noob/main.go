package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/golang/glog"
	"github.com/urfave/cli/v2"

	"github.com/noobuild/noob"
)

func main() {
	app := &cli.App{
		Name:  "noob",
		Usage: "incremental, parallel build engine for native C/C++ projects",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "manifest",
				Usage: "path to the TOML build manifest",
				Value: "noob.toml",
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "build",
				Usage: "build a node and its dependencies",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "target",
						Usage:    "node name to build",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "display",
						Usage: "display mode: normal or concise",
						Value: "normal",
					},
				},
				Action: runBuild,
			},
			{
				Name:  "clean",
				Usage: "remove a node's temporary objects",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "target", Required: true},
				},
				Action: runClean,
			},
			{
				Name:  "clean-all",
				Usage: "remove temporary objects and built targets for a node and its dependencies",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "target", Required: true},
				},
				Action: runCleanAll,
			},
			{
				Name:  "graph",
				Usage: "print a node's linearised dependency order",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "target", Required: true},
				},
				Action: runGraph,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadTarget(c *cli.Context) (*noob.BuildManifest, *noob.Node, error) {
	manifestPath := c.String("manifest")
	m, err := noob.LoadManifest(manifestPath)
	if err != nil {
		return nil, nil, err
	}
	callingPath, err := filepath.Abs(filepath.Dir(manifestPath))
	if err != nil {
		callingPath = "."
	}
	root, err := noob.BuildGraph(m, c.String("target"), callingPath)
	if err != nil {
		return nil, nil, err
	}
	return m, root, nil
}

func runBuild(c *cli.Context) error {
	m, root, err := loadTarget(c)
	if err != nil {
		return err
	}
	toolchain, err := m.ResolveToolchain()
	if err != nil {
		return err
	}

	display := noob.NewDisplay(noob.DisplayMode(c.String("display")), os.Stdout)
	session, err := noob.NewSession(toolchain, filepath.Join(filepath.Dir(c.String("manifest")), noob.CacheFileName), display)
	if err != nil {
		return err
	}
	if err := session.CaptureEnv(); err != nil {
		return err
	}

	glog.V(1).Infof("building %q", c.String("target"))
	return session.Build(context.Background(), root)
}

func runClean(c *cli.Context) error {
	m, root, err := loadTarget(c)
	if err != nil {
		return err
	}
	toolchain, err := m.ResolveToolchain()
	if err != nil {
		return err
	}
	return noob.CleanNode(root, toolchain)
}

func runCleanAll(c *cli.Context) error {
	m, root, err := loadTarget(c)
	if err != nil {
		return err
	}
	toolchain, err := m.ResolveToolchain()
	if err != nil {
		return err
	}
	return noob.CleanAllNode(root, toolchain)
}

func runGraph(c *cli.Context) error {
	_, root, err := loadTarget(c)
	if err != nil {
		return err
	}
	for i, n := range append(root.Linearise(), root) {
		fmt.Printf("%d: %s (%s)\n", i, n.Name(), n.Kind)
	}
	return nil
}
