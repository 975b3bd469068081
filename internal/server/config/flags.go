package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/archdrive/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-l string   log level
//	-s string   storage backend ("r2" or "memory")
//	-i string   R2 account id
//	-u string   R2 access key
//	-p string   R2 secret key
//	-e string   S3 endpoint (defaults to the R2 account endpoint)
//	-g string   signing region
//	-b string   bucket name
//	-w string   public URL base
//	-n int      upload max attempts
//	-t int      upload base delay, seconds
//	-m int      max upload size, megabytes
//
// Only the flags above are passed to the flag set (see flagx.FilterArgs),
// so -c/-config and -env pass through untouched.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-l", "-s", "-i", "-u", "-p", "-e", "-g", "-b", "-w", "-n", "-t", "-m"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.HTTPAddr, "a", config.HTTPAddr, "address and port to run server")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")
	fs.StringVar(&config.StorageBackend, "s", config.StorageBackend, "storage backend (r2|memory)")
	fs.StringVar(&config.R2AccountID, "i", config.R2AccountID, "R2 account id")
	fs.StringVar(&config.R2AccessKey, "u", config.R2AccessKey, "R2 access key")
	fs.StringVar(&config.R2SecretKey, "p", config.R2SecretKey, "R2 secret key")
	fs.StringVar(&config.R2Endpoint, "e", config.R2Endpoint, "S3 endpoint")
	fs.StringVar(&config.R2Region, "g", config.R2Region, "signing region")
	fs.StringVar(&config.R2Bucket, "b", config.R2Bucket, "bucket name")
	fs.StringVar(&config.R2PublicURL, "w", config.R2PublicURL, "public URL base")
	fs.IntVar(&config.UploadMaxAttempts, "n", config.UploadMaxAttempts, "upload max attempts")

	baseDelay := fs.Int("t", int(config.UploadBaseDelay.Seconds()), "upload base delay (in seconds)")
	maxUpload := fs.Int64("m", config.MaxUploadBytes>>20, "max upload size (in megabytes)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	// Unit-converted flags only apply when given, so finer values from
	// env or JSON survive.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "t":
			config.UploadBaseDelay = time.Duration(*baseDelay) * time.Second
		case "m":
			config.MaxUploadBytes = *maxUpload << 20
		}
	})
}
