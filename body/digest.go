package body

import (
	"encoding/binary"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/zeebo/xxh3"
)

// Digest returns a checksum of the full pose of the frame. Two frames with bit-identical poses have
// the same digest, which makes it usable to compare replays of the same inputs.
func Digest(f *Frame) uint64 {
	buf := make([]byte, 0, 16*4)
	buf = appendVec3(buf, f.Position)
	buf = appendQuat(buf, f.Rotation)
	buf = binary.LittleEndian.AppendUint32(buf, math32.Float32bits(f.Scale))
	buf = appendVec3(buf, f.EyePos)
	buf = appendQuat(buf, f.EyeRotation)
	return xxh3.Hash(buf)
}

func appendVec3(buf []byte, v mgl32.Vec3) []byte {
	for _, c := range v {
		buf = binary.LittleEndian.AppendUint32(buf, math32.Float32bits(c))
	}
	return buf
}

func appendQuat(buf []byte, q mgl32.Quat) []byte {
	buf = binary.LittleEndian.AppendUint32(buf, math32.Float32bits(q.W))
	return appendVec3(buf, q.V)
}
