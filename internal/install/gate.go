package install

// Exists is the existence gate. A present output path is treated as a
// complete artifact: it short-circuits acquisitions before any network
// activity and makes a finished pipeline skip its promotion.
func Exists(fs FS, path string) (bool, error) {
	return fs.Exists(path)
}
