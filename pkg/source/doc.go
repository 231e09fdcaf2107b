// Package source loads templates and store data.
//
// A source is named by a URI: a local path or file:// URI is read from
// disk, an s3://bucket/key URI is fetched with the AWS SDK. DecodeData
// turns JSON or YAML bytes into the map the store is built from.
//
//	mux := source.NewMux(source.FileLoader{}, source.NewS3Loader(s3.New(s3.Options{Region: "eu-west-1"})))
//	raw, err := mux.Load(ctx, "s3://templates/index.html")
package source
