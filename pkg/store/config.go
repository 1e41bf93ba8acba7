package store

import (
	"fmt"
	"os"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"

	"tableflip.dev/dbgrid/pkg/grid/virtual"
)

// Config is the resolved configuration.
type Config interface {
	BasePath() string
	PageSize() int
	RowHeight() virtual.RowHeight
	Overscan() int
}

const (
	DefaultPath     = "~/.dbgrid.db"
	DefaultPageSize = 100
	DefaultOverscan = 5
)

// LoadConfig reads .dbgrid.yaml from the working directory (or the directory
// named by DBGRID_CONFIG_PATH) and DBGRID_* environment variables.
func LoadConfig() (Config, error) {
	viper.SetDefault("path", DefaultPath)
	viper.SetDefault("page_size", DefaultPageSize)
	viper.SetDefault("row_height", string(virtual.Short))
	viper.SetDefault("overscan", DefaultOverscan)
	viper.SetConfigName(".dbgrid") // .yaml is implicit
	viper.SetEnvPrefix("DBGRID")
	viper.AutomaticEnv()

	if override := os.Getenv("DBGRID_CONFIG_PATH"); override != "" {
		viper.AddConfigPath(override)
	}

	viper.AddConfigPath("./")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("store: read config: %w", err)
		}
	}

	path, err := homedir.Expand(viper.GetString("path"))
	if err != nil {
		return nil, fmt.Errorf("store: expand path: %w", err)
	}
	h, err := virtual.ParseRowHeight(viper.GetString("row_height"))
	if err != nil {
		return nil, err
	}
	page := viper.GetInt("page_size")
	if page <= 0 {
		page = DefaultPageSize
	}
	return &fileConfig{
		Path:      path,
		Page:      page,
		Height:    h,
		Overscans: max(viper.GetInt("overscan"), 0),
	}, nil
}

// NewConfig returns a Config rooted at path with default settings.
func NewConfig(path string) Config {
	return &fileConfig{Path: path, Page: DefaultPageSize, Height: virtual.Short, Overscans: DefaultOverscan}
}

type fileConfig struct {
	Path      string            `json:"path"`
	Page      int               `json:"page_size"`
	Height    virtual.RowHeight `json:"row_height"`
	Overscans int               `json:"overscan"`
}

func (f *fileConfig) BasePath() string { return f.Path }
func (f *fileConfig) PageSize() int { return f.Page }
func (f *fileConfig) RowHeight() virtual.RowHeight { return f.Height }
func (f *fileConfig) Overscan() int { return f.Overscans }
