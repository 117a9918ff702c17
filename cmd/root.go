/*
Copyright 2020 Google LLC

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

var cfgFile string
var cachePath string
var spotifyCachePath string
var musicBrainzCachePath string
var databasePath string
var spotifyID string
var spotifySecret string
var taxonomyPath string
var logLevel string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "dosatsu-tools",
	Short: "Classifies charting artists into genres",
	Long: `Looks artists up on Spotify, falling back to MusicBrainz, and maps their
genres and tags onto a small set of canonical genres. Every answer is cached in
JSON files so long runs can be resumed.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default is $HOME/.dosatsu-tools.yaml)")

	rootCmd.PersistentFlags().StringVar(
		&cachePath, "cache", "hybrid_genre_cache.json", "Path to the combined genre cache")
	viper.BindPFlag("cache", rootCmd.PersistentFlags().Lookup("cache"))

	rootCmd.PersistentFlags().StringVar(
		&spotifyCachePath, "spotify-cache", "spotify_genre_cache.json", "Path to the Spotify genre cache")
	viper.BindPFlag("spotify-cache", rootCmd.PersistentFlags().Lookup("spotify-cache"))

	rootCmd.PersistentFlags().StringVar(
		&musicBrainzCachePath, "musicbrainz-cache", "musicbrainz_cache.json", "Path to the MusicBrainz genre cache")
	viper.BindPFlag("musicbrainz-cache", rootCmd.PersistentFlags().Lookup("musicbrainz-cache"))

	rootCmd.PersistentFlags().StringVarP(
		&databasePath, "database", "d", "./charts.db", "Path to the SQLite chart database")
	viper.BindPFlag("database", rootCmd.PersistentFlags().Lookup("database"))

	rootCmd.PersistentFlags().StringVar(
		&spotifyID, "spotify_id", "", "Spotify client ID (default $SPOTIFY_CLIENT_ID)")
	viper.BindPFlag("spotify_id", rootCmd.PersistentFlags().Lookup("spotify_id"))

	rootCmd.PersistentFlags().StringVar(
		&spotifySecret, "spotify_secret", "", "Spotify client secret (default $SPOTIFY_CLIENT_SECRET)")
	viper.BindPFlag("spotify_secret", rootCmd.PersistentFlags().Lookup("spotify_secret"))

	rootCmd.PersistentFlags().StringVar(
		&taxonomyPath, "taxonomy", "", "YAML file replacing the built-in genre keyword tables")
	viper.BindPFlag("taxonomy", rootCmd.PersistentFlags().Lookup("taxonomy"))

	rootCmd.PersistentFlags().StringVar(
		&logLevel, "log-level", "info", "Log level: debug, info, warn or error")
	viper.BindPFlag("log-level", rootCmd.PersistentFlags().Lookup("log-level"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := homedir.Dir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		// Search config in home directory with name ".dosatsu-tools" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigName(".dosatsu-tools")
	}

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}

	// See https://github.com/spf13/viper/pull/852
	rootCmd.Flags().VisitAll(func(f *pflag.Flag) {
		if viper.IsSet(f.Name) && viper.GetString(f.Name) != "" {
			rootCmd.Flags().Set(f.Name, viper.GetString(f.Name))
		}
	})
}
