package cmd

import (
	"io"

	"github.com/df07/go-principled-shading/pkg/scene"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
)

// ListScenes prints the built-in scenes and the .pbrt files of a directory.
func ListScenes(ctx *cli.Context) error {
	setupLogging(ctx)

	scenes, err := scene.ListScenes(ctx.String("dir"))
	if err != nil {
		return err
	}
	displayScenes(ctx.App.Writer, scenes)
	return nil
}

func displayScenes(w io.Writer, scenes []scene.SceneInfo) {
	table := tablewriter.NewWriter(w)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Scene", "Name", "Type", "Description"})
	for _, s := range scenes {
		id := s.ID
		if s.Type == "pbrt" {
			id = s.FilePath
		}
		table.Append([]string{id, s.Name, s.Type, s.Description})
	}
	table.Render()
}
