package objectcache

import "reflect"

// Value 能报告自身字节大小的值
// InsertValue 会优先使用 Len()，对内部在堆上分配内存的类型（切片、map、图像等）
// 应该实现此接口或直接调用 Insert 显式传入大小
type Value interface {
	Len() int
}

// SizeOf 估算值的大小：实现了 Value 时取 Len()，否则取动态类型的静态大小
// 静态大小不包含切片、map、指针指向的堆内存，会低估这类值的实际占用
func SizeOf(v any) int64 {
	switch x := v.(type) {
	case nil:
		return 0
	case Value:
		return int64(x.Len())
	}
	return int64(reflect.TypeOf(v).Size())
}

// ByteView 封装了一个不可变的字节切片
// 它的主要作用是支持只读访问，避免外部修改缓存内部的底层数组
type ByteView struct {
	data []byte
}

// NewByteView 拷贝 b 构造只读视图
func NewByteView(b []byte) ByteView {
	return ByteView{data: cloneBytes(b)}
}

// Len 实现 Value 接口
func (b ByteView) Len() int {
	return len(b.data)
}

// ByteSlice 返回数据的拷贝
func (b ByteView) ByteSlice() []byte {
	return cloneBytes(b.data)
}

// String 允许将缓存数据当作字符串处理
func (b ByteView) String() string {
	return string(b.data)
}

func cloneBytes(b []byte) []byte {
	c := make([]byte, len(b))
	copy(c, b)
	return c
}
