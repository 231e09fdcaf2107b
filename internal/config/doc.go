// Package config provides configuration parsing for vbind projects.
//
// The configuration is stored in vbind.json (or vbind.yaml) at the project
// root. This package handles loading, saving and validating it.
//
// # Configuration File Structure
//
//	{
//	  "name": "todo",
//	  "template": "index.html",
//	  "data": "data.yaml",
//	  "mount": "#app",
//	  "directivePrefix": "v-",
//	  "dev": {
//	    "host": "localhost",
//	    "port": 3000,
//	    "watch": true,
//	    "metricsPath": "/metrics"
//	  },
//	  "source": {
//	    "region": "eu-west-1"
//	  }
//	}
//
// Relative template and data paths are resolved against the directory the
// file was loaded from. s3:// URIs are used as given.
package config
