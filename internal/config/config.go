package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
)

const (
	// DataVersion is embedded in every stack file name. Bumping it orphans
	// old files instead of migrating them.
	DataVersion = 1

	AppDirName      = "cmdstack"
	StackFilePrefix = "cmd_stack"
	NamespaceEnvVar = "CMDSTACK_NAMESPACE"
)

var namespacePattern = regexp.MustCompile(`^[a-zA-Z0-9]([a-zA-Z0-9_-]*[a-zA-Z0-9])?$`)

// InvalidNamespaceError reports a namespace that cannot be mapped to a file name.
type InvalidNamespaceError struct {
	Namespace string
}

func (e *InvalidNamespaceError) Error() string {
	if e == nil {
		return "invalid namespace"
	}
	return fmt.Sprintf("invalid namespace %q: use letters, digits, '-' and '_', starting and ending with a letter or digit", e.Namespace)
}

// ValidateNamespace accepts the default (empty) namespace and any name
// matching the allowed pattern.
func ValidateNamespace(namespace string) error {
	if namespace == "" {
		return nil
	}
	if !namespacePattern.MatchString(namespace) {
		return &InvalidNamespaceError{Namespace: namespace}
	}
	return nil
}

// StackFileName returns the versioned file name for a namespace.
func StackFileName(namespace string) (string, error) {
	if err := ValidateNamespace(namespace); err != nil {
		return "", err
	}
	if namespace == "" {
		return fmt.Sprintf("%s_v%d.json", StackFilePrefix, DataVersion), nil
	}
	return fmt.Sprintf("%s_%s_v%d.json", StackFilePrefix, namespace, DataVersion), nil
}

// StackFilePath formats the stack file path for a namespace under dataDir.
func StackFilePath(dataDir, namespace string) (string, error) {
	if dataDir == "" {
		return "", errors.New("data directory must not be empty")
	}
	name, err := StackFileName(namespace)
	if err != nil {
		return "", err
	}
	return filepath.Join(dataDir, name), nil
}

// DefaultDataDir returns the platform cache directory for stack files.
func DefaultDataDir() (string, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("locate cache directory: %w", err)
	}
	return filepath.Join(cacheDir, AppDirName), nil
}

// NamespaceFromEnv returns the namespace selected through the environment, if any.
func NamespaceFromEnv() string {
	return os.Getenv(NamespaceEnvVar)
}
