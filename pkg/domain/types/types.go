package types

// Version is the installer version, overwritten at build time.
var Version = "dev"

const (
	// DefaultOwner and DefaultRepo identify the upstream ROLLER repository.
	DefaultOwner = "FatalDecomp"
	DefaultRepo  = "ROLLER"

	// AssetDirName is the directory holding game assets inside every
	// supported container. The search for it is case-insensitive.
	AssetDirName = "FATDATA"

	// AssetOutputDir and AudioOutputDir are the subdirectories of the
	// output directory that extraction writes into.
	AssetOutputDir = "fatdata"
	AudioOutputDir = "audio"

	// ConverterName is the external tool that splits CUE/BIN disc images
	// into a data track plus audio tracks.
	ConverterName = "bchunk"

	// StateFileName is the install bookkeeping file inside the install
	// directory.
	StateFileName = "state.toml"
)
