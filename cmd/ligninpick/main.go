// Command ligninpick is the desktop shell: a code editor on the left, the
// evaluated design on the right, and click-to-pick on the parts.
package main

import (
	"embed"
	"flag"
	"log"

	"github.com/chazu/ligninpick/pkg/app"
	"github.com/chazu/ligninpick/pkg/config"
	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"
)

//go:embed all:frontend/dist
var assets embed.FS

func main() {
	cfgPath := flag.String("config", "", "settings file (INI); defaults when empty")
	flag.Parse()

	cfg, err := config.Read(*cfgPath)
	if err != nil {
		log.Fatal(err)
	}

	a := app.New(cfg)
	err = wails.Run(&options.App{
		Title:  cfg.Window.Title,
		Width:  cfg.Window.Width,
		Height: cfg.Window.Height,
		AssetServer: &assetserver.Options{
			Assets: assets,
		},
		OnStartup: a.Startup,
		Bind:      []interface{}{a},
	})
	if err != nil {
		log.Fatal(err)
	}
}
