package s3

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"resume-builder/internal/shared/storage/object"
)

type fakeS3 struct {
	objects map[string][]byte
	types   map[string]string
	lastPut *s3.PutObjectInput
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: map[string][]byte{}, types: map[string]string{}}
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.lastPut = in
	f.objects[*in.Key] = data
	f.types[*in.Key] = aws.ToString(in.ContentType)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	data, ok := f.objects[*in.Key]
	if !ok {
		return nil, &s3types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{
		Body:          io.NopCloser(bytes.NewReader(data)),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(f.types[*in.Key]),
	}, nil
}

func (f *fakeS3) DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	delete(f.objects, *in.Key)
	return &s3.DeleteObjectOutput{}, nil
}

func TestPutAppliesPrefixAndEncryption(t *testing.T) {
	fake := newFakeS3()
	store := newStore(fake, "exports-bucket", "/resume-builder/", "")

	obj, err := store.Put(context.Background(), "guest:abc", "Staff Engineer at Acme.pdf", "application/pdf", strings.NewReader("%PDF-1.7"))
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if got := aws.ToString(fake.lastPut.Key); got != "resume-builder/"+obj.Key {
		t.Fatalf("expected prefixed key, got %q", got)
	}
	if fake.lastPut.ServerSideEncryption != s3types.ServerSideEncryptionAes256 {
		t.Fatalf("expected AES256, got %q", fake.lastPut.ServerSideEncryption)
	}
	if aws.ToInt64(fake.lastPut.ContentLength) != 8 || obj.Size != 8 {
		t.Fatalf("unexpected length %v / %d", fake.lastPut.ContentLength, obj.Size)
	}
	if !strings.Contains(aws.ToString(fake.lastPut.ContentDisposition), "Staff Engineer at Acme.pdf") {
		t.Fatalf("unexpected disposition %q", aws.ToString(fake.lastPut.ContentDisposition))
	}
}

func TestPutUsesKMSWhenConfigured(t *testing.T) {
	fake := newFakeS3()
	store := newStore(fake, "b", "", "kms-key-1")
	if _, err := store.Put(context.Background(), "u", "r.docx", "", strings.NewReader("zip")); err != nil {
		t.Fatalf("put: %v", err)
	}
	if fake.lastPut.ServerSideEncryption != s3types.ServerSideEncryptionAwsKms || aws.ToString(fake.lastPut.SSEKMSKeyId) != "kms-key-1" {
		t.Fatalf("expected KMS encryption, got %+v", fake.lastPut)
	}
	if !strings.Contains(aws.ToString(fake.lastPut.ContentType), "wordprocessingml") {
		t.Fatalf("expected docx content type, got %q", aws.ToString(fake.lastPut.ContentType))
	}
}

func TestOpenAndDelete(t *testing.T) {
	ctx := context.Background()
	fake := newFakeS3()
	store := newStore(fake, "b", "p", "")
	obj, err := store.Put(ctx, "u", "r.html", "text/html; charset=utf-8", strings.NewReader("<h1>Ada</h1>"))
	if err != nil {
		t.Fatalf("put: %v", err)
	}

	rc, meta, err := store.Open(ctx, obj.Key)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	data, _ := io.ReadAll(rc)
	rc.Close()
	if string(data) != "<h1>Ada</h1>" || meta.Size != int64(len(data)) || meta.FileName != "r.html" {
		t.Fatalf("unexpected %q %+v", data, meta)
	}

	if err := store.Delete(ctx, obj.Key); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, _, err := store.Open(ctx, obj.Key); !errors.Is(err, object.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestOpenRejectsEscapingKey(t *testing.T) {
	store := newStore(newFakeS3(), "b", "", "")
	if _, _, err := store.Open(context.Background(), "../other/exports/x.pdf"); !errors.Is(err, object.ErrInvalidKey) {
		t.Fatalf("expected ErrInvalidKey, got %v", err)
	}
}

func TestPutRejectsOversizedExport(t *testing.T) {
	store := newStore(newFakeS3(), "b", "", "")
	big := bytes.Repeat([]byte("x"), maxExportBytes+1)
	if _, err := store.Put(context.Background(), "u", "big.pdf", "", bytes.NewReader(big)); err == nil {
		t.Fatalf("expected size error")
	}
}
