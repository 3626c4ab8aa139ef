// Package tarn provides client-side utilities for the Tarn data platform.
//
// It covers two independent concerns:
//
//   - A REST client and batched file-handle copy coordinator. Copying file
//     handles between entities is a server-side operation; CopyFileHandles
//     splits arbitrarily long input lists into bounded pages, submits them
//     sequentially, and returns per-item results in input order.
//   - Storage transfer adapters (see the transfer package) for moving files
//     to and from S3-compatible object storage and SFTP servers with
//     progress reporting.
//
// # Basic Usage
//
// Create a client and copy file handles:
//
//	client, err := tarn.New(&tarn.Config{
//		Endpoint:  "https://api.tarn.example.org",
//		AuthToken: token,
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	results, err := client.CopyFileHandles(ctx,
//		[]string{"345", "789"},
//		[]string{"FileEntity", "FileEntity"},
//		[]string{"543", "987"},
//		nil,
//	)
//
// Each result either carries the new file handle or a per-item failure
// code; a failure code is not an error at the call level.
//
// # Profile Configuration
//
// Use profiles to manage multiple platform configurations:
//
//	configFile, err := tarn.LoadConfigFile(tarn.DefaultConfigPath())
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	profile, err := configFile.GetProfile("production")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	client, err := tarn.New(tarn.ConfigFromProfile(profile))
//
// See the transfer package for the S3 and SFTP storage backends and
// cmd/tarn-cli for the command line interface.
package tarn
