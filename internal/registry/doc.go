// Package registry stores the ownership secrets of deployed sites.
//
// The registry is a single JSON object mapping site tag to site secret,
// kept in the user's home directory (~/.asap by default):
//
//	{"my-app":"3f0c...","blog":"a91e..."}
//
// An entry exists exactly while this machine believes it still owns the
// deployed site: it is written when the hosting service issues a secret and
// removed after a successful destroy.
//
// Every read loads the whole file and every mutation rewrites it through a
// temporary file and a rename, so readers never observe a half-written
// registry. There is no locking between concurrent CLI invocations; the
// last writer wins.
//
// Callers hold a *Registry handle and never touch the path directly:
//
//	reg := registry.Open(configs.RegistryPath())
//	secret, ok, err := reg.Get("my-app")
package registry
