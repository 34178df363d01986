package ipc_test

import (
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/lemon4ex/ipc/ipc"
)

var _ = Describe("Dictionary", func() {
	It("round-trips every scalar tag through its typed Get/Set pair", func() {
		d := ipc.NewDictionary()
		defer d.Release()

		d.SetBool("b", true)
		d.SetInt64("i", -7)
		d.SetUint64("u", 7)
		d.SetDouble("f", 3.5)
		d.SetDate("t", 123456789)
		d.SetData("raw", []byte{1, 2, 3})
		d.SetString("s", "hello")
		d.SetUUID("id", [16]byte{1, 2, 3, 4})

		Expect(d.GetBool("b")).To(BeTrue())
		Expect(d.GetInt64("i")).To(Equal(int64(-7)))
		Expect(d.GetUint64("u")).To(Equal(uint64(7)))
		Expect(d.GetDouble("f")).To(Equal(3.5))
		Expect(d.GetDate("t")).To(Equal(int64(123456789)))
		Expect(d.GetData("raw")).To(Equal([]byte{1, 2, 3}))
		Expect(d.GetString("s")).To(Equal("hello"))
		Expect(d.GetUUID("id")).To(Equal([16]byte{1, 2, 3, 4}))
	})

	It("returns zero values for a missing key or a tag mismatch, never panics", func() {
		d := ipc.NewDictionary()
		defer d.Release()
		d.SetString("s", "x")

		Expect(d.GetBool("missing")).To(BeFalse())
		Expect(d.GetInt64("missing")).To(Equal(int64(0)))
		Expect(d.GetString("missing")).To(Equal(""))
		Expect(d.GetData("missing")).To(BeNil())

		Expect(d.GetInt64("s")).To(Equal(int64(0)))
		Expect(d.GetBool("s")).To(BeFalse())
	})

	It("nests Dictionary and Array values", func() {
		inner := ipc.NewDictionary()
		inner.SetBool("ok", true)

		arr := ipc.NewArray()
		arr.SetInt64(ipc.Append, 1)
		arr.SetInt64(ipc.Append, 2)

		d := ipc.NewDictionary()
		defer d.Release()
		d.SetDictionary("inner", inner)
		d.SetArray("arr", arr)
		inner.Release()
		arr.Release()

		got := d.GetDictionary("inner")
		Expect(got).NotTo(BeNil())
		Expect(got.GetBool("ok")).To(BeTrue())

		gotArr := d.GetArray("arr")
		Expect(gotArr).NotTo(BeNil())
		Expect(gotArr.Len()).To(Equal(2))
		Expect(gotArr.GetInt64(0)).To(Equal(int64(1)))
		Expect(gotArr.GetInt64(1)).To(Equal(int64(2)))

		Expect(d.GetArray("inner")).To(BeNil())
		Expect(d.GetDictionary("arr")).To(BeNil())
	})

	It("CreateReply only succeeds on a dictionary that arrived off the wire", func() {
		d := ipc.NewDictionary()
		defer d.Release()
		Expect(d.CreateReply()).To(BeNil())
	})
})

var _ = Describe("Array", func() {
	It("round-trips every scalar tag through its typed Get/Set pair", func() {
		a := ipc.NewArray()
		defer a.Release()

		a.SetBool(ipc.Append, true)
		a.SetInt64(ipc.Append, -7)
		a.SetUint64(ipc.Append, 7)
		a.SetDouble(ipc.Append, 3.5)
		a.SetDate(ipc.Append, 123456789)
		a.SetData(ipc.Append, []byte{1, 2, 3})
		a.SetString(ipc.Append, "hello")
		a.SetUUID(ipc.Append, [16]byte{1, 2, 3, 4})

		Expect(a.Len()).To(Equal(8))
		Expect(a.GetBool(0)).To(BeTrue())
		Expect(a.GetInt64(1)).To(Equal(int64(-7)))
		Expect(a.GetUint64(2)).To(Equal(uint64(7)))
		Expect(a.GetDouble(3)).To(Equal(3.5))
		Expect(a.GetDate(4)).To(Equal(int64(123456789)))
		Expect(a.GetData(5)).To(Equal([]byte{1, 2, 3}))
		Expect(a.GetString(6)).To(Equal("hello"))
		Expect(a.GetUUID(7)).To(Equal([16]byte{1, 2, 3, 4}))
	})

	It("returns zero values out of range, never panics", func() {
		a := ipc.NewArray()
		defer a.Release()

		Expect(a.GetBool(0)).To(BeFalse())
		Expect(a.GetInt64(5)).To(Equal(int64(0)))
		Expect(a.GetString(-1)).To(Equal(""))
	})
})
