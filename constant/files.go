package constant

// TempSuffix marks a file that is still being written. Such files never count as downloaded.
const TempSuffix = ".tmp"

// PartialSuffixes are the markers browsers and download agents leave next to a file they are still writing.
var PartialSuffixes = []string{".crdownload", ".part", TempSuffix}

// ChunkSize is the default read size of a pull transfer.
const ChunkSize = 1 << 20
