// Package config provides configuration management for amscrape.
//
// Settings are layered, lowest precedence first:
//
//  1. DefaultSettings
//  2. a YAML (or JSON) settings file
//  3. AMSCRAPE_* environment variables
//  4. command line flags that were explicitly set
//
// # Loading
//
//	settings, err := config.Load(config.DefaultPath(), cmd.Flags())
//	if err != nil {
//	    return err
//	}
//
// A missing settings file is not an error; defaults are used.
//
// # Saving
//
//	settings.OutputPath = "/custom/path/{kind}/{artist}/{title}"
//	err := settings.Save(config.DefaultPath())
//
// # Conversion
//
// ToPathConfig and ToOptions hand the relevant subsets to the model and
// applemusic packages.
package config
