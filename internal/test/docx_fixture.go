package test

import (
	"archive/zip"
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// SampleDocumentXML 两个段落、一个表格，另有一个只含空白的文本节点
const SampleDocumentXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body><w:p><w:r><w:t>Hello</w:t></w:r></w:p><w:p><w:r><w:t xml:space="preserve">World </w:t></w:r><w:r><w:t xml:space="preserve"> </w:t></w:r></w:p><w:tbl><w:tr><w:tc><w:p><w:r><w:t>Cell</w:t></w:r></w:p></w:tc></w:tr></w:tbl><w:sectPr/></w:body></w:document>`

// Member 测试压缩包中的一个文件
type Member struct {
	Name   string
	Body   []byte
	Method uint16
}

// DefaultMembers 返回一个最小 docx 的全部成员，documentXML 作为正文负载
func DefaultMembers(documentXML string) []Member {
	return []Member{
		{Name: "[Content_Types].xml", Body: []byte(`<?xml version="1.0" encoding="UTF-8"?><Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"/>`), Method: zip.Deflate},
		{Name: "_rels/.rels", Body: []byte(`<?xml version="1.0" encoding="UTF-8"?><Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"/>`), Method: zip.Deflate},
		{Name: "word/document.xml", Body: []byte(documentXML), Method: zip.Deflate},
		{Name: "word/media/image1.png", Body: []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), Method: zip.Store},
	}
}

// WriteDocx 在 dir 下生成 docx 文件并返回路径
func WriteDocx(t *testing.T, dir, name string, members []Member) string {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, m := range members {
		w, err := zw.CreateHeader(&zip.FileHeader{Name: m.Name, Method: m.Method})
		require.NoError(t, err)
		_, err = w.Write(m.Body)
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

// ReadMember 读取压缩包中某个成员解压后的内容
func ReadMember(t *testing.T, path, name string) []byte {
	t.Helper()

	zr, err := zip.OpenReader(path)
	require.NoError(t, err)
	defer zr.Close()

	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		require.NoError(t, err)
		defer rc.Close()
		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		return data
	}
	t.Fatalf("member %s not found in %s", name, path)
	return nil
}
