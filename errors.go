package objectcache

import (
	stderrors "errors"
	"fmt"

	"github.com/jmgilman/go/errors"
)

// 缓存返回的错误都可以用 errors.Is 与下面的哨兵错误比较，
// 同时携带 jmgilman/go/errors 的错误码，便于上层按码分类
var (
	// ErrKeyNotFound Get 的 key 不在缓存中（可能从未插入，也可能已被淘汰）
	ErrKeyNotFound = stderrors.New("key not found")
	// ErrTypeMismatch 类型化读取时缓存中的值不是期望的类型
	ErrTypeMismatch = stderrors.New("cached value has unexpected type")
	// ErrInvalidSize 声明的大小为负数
	ErrInvalidSize = stderrors.New("invalid entry size")
	// ErrKeySpaceExhausted 多次生成的 key 都与已有 key 冲突
	ErrKeySpaceExhausted = stderrors.New("key space exhausted")
	// ErrInvalidOptions 配置非法
	ErrInvalidOptions = stderrors.New("invalid cache options")
	// ErrInvalidName Memo 的名称为空
	ErrInvalidName = stderrors.New("invalid memo name")
)

func keyNotFound[K comparable](key K) error {
	return errors.WithContext(
		errors.Wrap(ErrKeyNotFound, errors.CodeNotFound, "cache lookup failed"),
		"key", key)
}

func typeMismatch[K comparable](key K, want string, got any) error {
	return errors.WithContextMap(
		errors.Wrap(ErrTypeMismatch, errors.CodeInvalidInput, "cache value type mismatch"),
		map[string]interface{}{
			"key":  key,
			"want": want,
			"got":  fmt.Sprintf("%T", got),
		})
}

func invalidSize(size int64) error {
	return errors.WithContext(
		errors.Wrap(ErrInvalidSize, errors.CodeInvalidInput, "entry size must not be negative"),
		"size", size)
}

func keySpaceExhausted(attempts int) error {
	return errors.WithContext(
		errors.Wrap(ErrKeySpaceExhausted, errors.CodeConflict, "could not generate a unique key"),
		"attempts", attempts)
}

func invalidOptions(err error, msg string) error {
	if err == nil {
		err = ErrInvalidOptions
	} else {
		err = fmt.Errorf("%w: %w", ErrInvalidOptions, err)
	}
	return errors.Wrap(err, errors.CodeInvalidConfig, msg)
}
