// Package fileurl 文件路径辅助函数
package fileurl

import (
	"errors"
	"os"
	"path/filepath"
)

// IsExist 路径是否存在
func IsExist(dst string) bool {
	_, err := os.Stat(dst)
	return err == nil || !errors.Is(err, os.ErrNotExist)
}

// IsFile 是否为普通文件
func IsFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// CreatePath 为文件路径创建父目录
func CreatePath(dst string, perm os.FileMode) error {
	dir := filepath.Dir(dst)
	if dir == "" || dir == "." {
		return nil
	}
	return os.MkdirAll(dir, perm)
}

// GetAbsPath path 为相对路径时基于 root 解析
func GetAbsPath(path string, root string) (string, error) {
	if filepath.IsAbs(path) {
		return filepath.Clean(path), nil
	}
	if root == "" {
		return filepath.Abs(path)
	}
	return filepath.Abs(filepath.Join(root, path))
}
