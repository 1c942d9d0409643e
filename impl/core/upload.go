package core

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"ChatCRM/entity"
	"ChatCRM/internal/database"
	"ChatCRM/internal/http-server/handlers/upload"
	"ChatCRM/internal/lib/fileurl"
)

// SaveUpload writes the file under an opaque name, persists the attachment
// message and returns the payload the client relays over its socket with
// fromUpload set. The relay frame is delivery-only: the message is already
// stored here.
func (c *Core) SaveUpload(ctx context.Context, sender *entity.User, roomID, fileName, contentType string, size int64, file io.Reader) (*entity.MessagePayload, error) {
	if err := c.requireMember(ctx, roomID, sender); err != nil {
		return nil, err
	}

	isImage := strings.HasPrefix(contentType, "image/")
	if isImage && !c.imageTypeAllowed(contentType) {
		return nil, upload.ErrFileType
	}

	fileID := uuid.NewString() + safeExt(fileName)
	if err := c.writeMediaFile(fileID, file); err != nil {
		return nil, err
	}

	att := &entity.Attachment{
		Kind:     entity.MessageKindFile,
		File:     fileID,
		FileName: fileName,
		FileType: contentType,
		FileSize: size,
	}
	if isImage {
		att.Kind = entity.MessageKindImage
		att.Image = fileID
		att.File = ""
	}

	msg, err := c.repo.CreateMessage(ctx, roomID, sender.UserID, "", att)
	if err != nil {
		os.Remove(filepath.Join(c.conf.Media.Dir, fileID))
		return nil, err
	}

	signed := fileurl.SignURL(fileID, c.conf.Media.URLSecret, c.conf.MediaURLTTL())
	payload := &entity.MessagePayload{
		Action:    entity.ActionMessage,
		UserID:    sender.UserID,
		RoomID:    roomID,
		UserName:  sender.FullName(),
		UserImage: sender.Image,
		Timestamp: msg.Timestamp.Format(time.RFC3339),
		FileName:  fileName,
		FileType:  contentType,
		FileSize:  size,
		Kind:      msg.Kind,
	}
	if isImage {
		payload.Image = signed
	} else {
		payload.File = signed
	}
	return payload, nil
}

// MediaPath maps a stored file identifier back to a path inside the media
// directory. Identifiers with path separators never resolve.
func (c *Core) MediaPath(fileID string) (string, error) {
	if fileID == "" || strings.ContainsAny(fileID, "/\\") || strings.Contains(fileID, "..") {
		return "", repository.ErrNotFound
	}
	path := filepath.Join(c.conf.Media.Dir, fileID)
	if _, err := os.Stat(path); err != nil {
		return "", repository.ErrNotFound
	}
	return path, nil
}

func (c *Core) MediaURLSecret() string { return c.conf.Media.URLSecret }

func (c *Core) MaxFileSize() int64 { return c.conf.MaxFileSize() }

func (c *Core) imageTypeAllowed(contentType string) bool {
	for _, allowed := range c.conf.Chat.AllowedImageTypes {
		if strings.EqualFold(allowed, contentType) {
			return true
		}
	}
	return false
}

func (c *Core) writeMediaFile(fileID string, src io.Reader) error {
	if err := os.MkdirAll(c.conf.Media.Dir, 0o755); err != nil {
		return fmt.Errorf("media dir: %w", err)
	}
	dst, err := os.Create(filepath.Join(c.conf.Media.Dir, fileID))
	if err != nil {
		return fmt.Errorf("create media file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(dst.Name())
		return fmt.Errorf("write media file: %w", err)
	}
	return nil
}

// safeExt keeps the original extension when it looks harmless.
func safeExt(fileName string) string {
	ext := strings.ToLower(filepath.Ext(fileName))
	if len(ext) > 10 || strings.ContainsAny(ext, "/\\") {
		return ""
	}
	return ext
}
