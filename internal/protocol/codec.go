// codec.go

package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// Codec 出站消息编码
type Codec interface {
	Name() string
	// Binary 编码结果是否需要用二进制帧发送
	Binary() bool
	Encode(kind string, payload any) ([]byte, error)
}

// JSONCodec 默认编码，文本帧
type JSONCodec struct{}

func (JSONCodec) Name() string { return "json" }
func (JSONCodec) Binary() bool { return false }

// Encode 编码为 JSON
func (JSONCodec) Encode(kind string, payload any) ([]byte, error) {
	data, err := json.Marshal(Frame{Type: kind, Payload: payload})
	if err != nil {
		return nil, fmt.Errorf("JSON编码失败: %w", err)
	}
	return data, nil
}

// MsgpackCodec 二进制编码，用于高频状态同步
type MsgpackCodec struct{}

func (MsgpackCodec) Name() string { return "msgpack" }
func (MsgpackCodec) Binary() bool { return true }

// Encode 编码为 msgpack
func (MsgpackCodec) Encode(kind string, payload any) ([]byte, error) {
	data, err := msgpack.Marshal(Frame{Type: kind, Payload: payload})
	if err != nil {
		return nil, fmt.Errorf("msgpack编码失败: %w", err)
	}
	return data, nil
}

// CodecByName 按名称选择编码，未知名称使用 JSON
func CodecByName(name string) Codec {
	if name == "msgpack" {
		return MsgpackCodec{}
	}
	return JSONCodec{}
}
