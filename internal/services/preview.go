package services

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

var MinioClient *minio.Client

func ConnectMinio() {
	endpoint := os.Getenv("MINIO_ENDPOINT")
	accessKey := os.Getenv("MINIO_ACCESS_KEY")
	secretKey := os.Getenv("MINIO_SECRET_KEY")

	if endpoint == "" {
		log.Println("⚠️ MinIO non configuré — prévisualisations stockées en local")
		return
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: false, // ⚠️ à passer à true si tu as HTTPS
	})
	if err != nil {
		log.Println("⚠️ MinIO non configuré :", err)
		return
	}
	MinioClient = client
	log.Println("✅ Connecté à MinIO :", endpoint)
}

// Staged est une prévisualisation d'image en attente de soumission. C'est une
// ressource acquise à la sélection du fichier et relâchée à son retrait ou au
// démontage du formulaire ; Release est idempotent et sûr sur tous les chemins
// de sortie.
type Staged struct {
	URL  string
	Size int64

	open    func() (io.ReadCloser, error)
	release func()
	once    sync.Once
}

// NewStaged construit une prévisualisation à partir de ses fonctions de
// relecture et de libération.
func NewStaged(url string, size int64, open func() (io.ReadCloser, error), release func()) *Staged {
	return &Staged{URL: url, Size: size, open: open, release: release}
}

// Open relit le contenu du fichier mis en attente (pour l'upload final).
func (s *Staged) Open() (io.ReadCloser, error) {
	return s.open()
}

func (s *Staged) Release() {
	s.once.Do(s.release)
}

// PreviewStore met en attente les fichiers image choisis dans un formulaire et
// fournit une URL de prévisualisation affichable par le navigateur.
type PreviewStore interface {
	Stage(ctx context.Context, filename, contentType string, r io.Reader, size int64) (*Staged, error)
	// LocalDir retourne le dossier à servir statiquement, vide quand les
	// prévisualisations sont hébergées sur MinIO.
	LocalDir() string
}

// NewPreviewStore choisit l'implémentation : MinIO avec URLs présignées quand
// il est connecté, sinon un dossier temporaire local au processus.
func NewPreviewStore() (PreviewStore, error) {
	if MinioClient != nil {
		bucket := os.Getenv("MINIO_BUCKET")
		if bucket == "" {
			bucket = "vitrine-previews"
		}
		return &minioPreviews{client: MinioClient, bucket: bucket}, nil
	}

	dir, err := os.MkdirTemp("", "vitrine-previews-*")
	if err != nil {
		return nil, fmt.Errorf("impossible de créer le dossier de prévisualisations: %v", err)
	}
	log.Println("✅ Prévisualisations locales dans", dir)
	return &localPreviews{dir: dir}, nil
}

type minioPreviews struct {
	client *minio.Client
	bucket string
}

func (m *minioPreviews) Stage(ctx context.Context, filename, contentType string, r io.Reader, size int64) (*Staged, error) {
	objectName := fmt.Sprintf("previews/%s%s", uuid.NewString(), filepath.Ext(filename))

	_, err := m.client.PutObject(ctx, m.bucket, objectName, r, size,
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return nil, fmt.Errorf("erreur upload MinIO: %v", err)
	}

	presigned, err := m.client.PresignedGetObject(ctx, m.bucket, objectName, 24*time.Hour, make(url.Values))
	if err != nil {
		m.client.RemoveObject(context.Background(), m.bucket, objectName, minio.RemoveObjectOptions{})
		return nil, fmt.Errorf("erreur URL signée MinIO: %v", err)
	}

	return NewStaged(presigned.String(), size,
		func() (io.ReadCloser, error) {
			return m.client.GetObject(context.Background(), m.bucket, objectName, minio.GetObjectOptions{})
		},
		func() {
			if err := m.client.RemoveObject(context.Background(), m.bucket, objectName, minio.RemoveObjectOptions{}); err != nil {
				log.Printf("⚠️ Erreur suppression prévisualisation %s: %v", objectName, err)
			}
		}), nil
}

type localPreviews struct {
	dir string
}

func (l *localPreviews) LocalDir() string { return l.dir }

func (m *minioPreviews) LocalDir() string { return "" }

func (l *localPreviews) Stage(_ context.Context, filename, _ string, r io.Reader, size int64) (*Staged, error) {
	name := uuid.NewString() + filepath.Ext(filename)
	path := filepath.Join(l.dir, name)

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("erreur écriture prévisualisation: %v", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(path)
		return nil, fmt.Errorf("erreur écriture prévisualisation: %v", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("erreur écriture prévisualisation: %v", err)
	}

	return NewStaged("/previews/"+name, size,
		func() (io.ReadCloser, error) { return os.Open(path) },
		func() {
			if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
				log.Printf("⚠️ Erreur suppression prévisualisation %s: %v", path, err)
			}
		}), nil
}
