package advancement

import "strings"

// SplitID separates an id into namespace and path.
// Bare ids have an empty namespace.
//
//	SplitID("minecraft:story/root") // "minecraft", "story/root"
//	SplitID("story/root")           // "", "story/root"
func SplitID(id string) (namespace, path string) {
	if i := strings.IndexByte(id, ':'); i >= 0 {
		return id[:i], id[i+1:]
	}
	return "", id
}

// Category returns the first path segment of id ("story" for "minecraft:story/root").
// Ids without a '/' have no category.
func Category(id string) string {
	_, path := SplitID(id)
	if i := strings.IndexByte(path, '/'); i >= 0 {
		return path[:i]
	}
	return ""
}

// Name returns the last path segment of id.
func Name(id string) string {
	_, path := SplitID(id)
	if i := strings.LastIndexByte(path, '/'); i >= 0 {
		return path[i+1:]
	}
	return path
}

// CanonicalID joins namespace and path, dropping the namespace when it equals
// defaultNamespace so that vanilla content keeps its bare ids.
func CanonicalID(namespace, path, defaultNamespace string) string {
	namespace = strings.TrimSuffix(namespace, ":")
	defaultNamespace = strings.TrimSuffix(defaultNamespace, ":")
	if namespace == "" || namespace == defaultNamespace {
		return path
	}
	return namespace + ":" + path
}
