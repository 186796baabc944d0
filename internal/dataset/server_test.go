package dataset

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/onsi/gomega/ghttp"

	"github.com/spendlens/spendlens/internal/analytics"
	"github.com/spendlens/spendlens/internal/lineitem"
)

var _ = Describe("Server", func() {
	var (
		db          *mockDB
		service     *Service
		server      *Server
		auth        BasicAuth
		ghttpServer *ghttp.Server
	)

	setupServer := func() {
		if ghttpServer != nil {
			ghttpServer.Close()
		}
		server = NewServerWithMux(service, auth, http.NewServeMux())
		ghttpServer = ghttp.NewServer()
		ghttpServer.AppendHandlers(server.ServeHTTP)
	}

	BeforeEach(func() {
		db = newMockDB()
		service = NewService(db, newMockScanner(), newMockStorage())
		auth = BasicAuth{}
		setupServer()
	})

	AfterEach(func() {
		if ghttpServer != nil {
			ghttpServer.Close()
		}
	})

	multipartUpload := func(filename string, content []byte, fields map[string]string) (*bytes.Buffer, string) {
		body := &bytes.Buffer{}
		writer := multipart.NewWriter(body)
		part, err := writer.CreateFormFile("file", filename)
		Expect(err).NotTo(HaveOccurred())
		_, err = part.Write(content)
		Expect(err).NotTo(HaveOccurred())
		for k, v := range fields {
			Expect(writer.WriteField(k, v)).To(Succeed())
		}
		Expect(writer.Close()).To(Succeed())
		return body, writer.FormDataContentType()
	}

	Describe("handleIndex", func() {
		It("should describe the service", func() {
			resp, err := http.Get(ghttpServer.URL() + "/")
			Expect(err).NotTo(HaveOccurred())
			defer resp.Body.Close()
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			var body map[string]string
			Expect(json.NewDecoder(resp.Body).Decode(&body)).To(Succeed())
			Expect(body["service"]).To(Equal("spendlens"))
		})
	})

	Describe("handleListDatasets", func() {
		When("datasets exist", func() {
			BeforeEach(func() {
				db.datasets["id1"] = &lineitem.Dataset{ID: "id1", Name: "One"}
				db.datasets["id2"] = &lineitem.Dataset{ID: "id2", Name: "Two"}
			})

			It("should return them as JSON", func() {
				resp, err := http.Get(ghttpServer.URL() + "/api/datasets")
				Expect(err).NotTo(HaveOccurred())
				defer resp.Body.Close()
				Expect(resp.StatusCode).To(Equal(http.StatusOK))

				var datasets []*lineitem.Dataset
				Expect(json.NewDecoder(resp.Body).Decode(&datasets)).To(Succeed())
				Expect(datasets).To(HaveLen(2))
			})
		})

		When("no datasets exist", func() {
			It("should return an empty JSON array, not null", func() {
				resp, err := http.Get(ghttpServer.URL() + "/api/datasets")
				Expect(err).NotTo(HaveOccurred())
				defer resp.Body.Close()

				body, err := io.ReadAll(resp.Body)
				Expect(err).NotTo(HaveOccurred())
				Expect(string(body)).To(ContainSubstring("[]"))
			})
		})
	})

	Describe("handleImportCSV", func() {
		When("a valid CSV is uploaded", func() {
			It("should create the dataset", func() {
				body, contentType := multipartUpload("groceries.csv",
					[]byte("receipt_id,name,quantity,line_total\nr1,Milk,2,10.98\n"),
					map[string]string{"name": "January"})

				resp, err := http.Post(ghttpServer.URL()+"/api/datasets", contentType, body)
				Expect(err).NotTo(HaveOccurred())
				defer resp.Body.Close()
				Expect(resp.StatusCode).To(Equal(http.StatusCreated))

				var ds lineitem.Dataset
				Expect(json.NewDecoder(resp.Body).Decode(&ds)).To(Succeed())
				Expect(ds.Name).To(Equal("January"))
				Expect(ds.RecordCount).To(Equal(1))
			})
		})

		When("the CSV has no rows", func() {
			It("should return bad request", func() {
				body, contentType := multipartUpload("empty.csv",
					[]byte("receipt_id,name\n"), nil)

				resp, err := http.Post(ghttpServer.URL()+"/api/datasets", contentType, body)
				Expect(err).NotTo(HaveOccurred())
				resp.Body.Close()
				Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
			})
		})

		When("no file is provided", func() {
			It("should return bad request", func() {
				body := &bytes.Buffer{}
				writer := multipart.NewWriter(body)
				Expect(writer.Close()).To(Succeed())

				resp, err := http.Post(ghttpServer.URL()+"/api/datasets", writer.FormDataContentType(), body)
				Expect(err).NotTo(HaveOccurred())
				resp.Body.Close()
				Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
			})
		})
	})

	Describe("handleScanReceipt", func() {
		When("the dataset exists", func() {
			BeforeEach(func() {
				db.datasets["id1"] = &lineitem.Dataset{ID: "id1", Name: "One", RecordCount: 0}
				db.records["id1"] = []lineitem.Record{}
			})

			It("should append the scanned items", func() {
				body, contentType := multipartUpload("receipt.jpg", []byte("image data"), nil)

				resp, err := http.Post(ghttpServer.URL()+"/api/datasets/id1/receipts", contentType, body)
				Expect(err).NotTo(HaveOccurred())
				defer resp.Body.Close()
				Expect(resp.StatusCode).To(Equal(http.StatusCreated))

				var ds lineitem.Dataset
				Expect(json.NewDecoder(resp.Body).Decode(&ds)).To(Succeed())
				Expect(ds.RecordCount).To(Equal(1))
			})
		})

		When("the dataset does not exist", func() {
			It("should return bad request", func() {
				body, contentType := multipartUpload("receipt.jpg", []byte("image data"), nil)

				resp, err := http.Post(ghttpServer.URL()+"/api/datasets/missing/receipts", contentType, body)
				Expect(err).NotTo(HaveOccurred())
				resp.Body.Close()
				Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
			})
		})
	})

	Describe("handleGetDataset", func() {
		When("the dataset exists", func() {
			BeforeEach(func() {
				db.datasets["id1"] = &lineitem.Dataset{ID: "id1", Name: "One"}
			})

			It("should return it", func() {
				resp, err := http.Get(ghttpServer.URL() + "/api/datasets/id1")
				Expect(err).NotTo(HaveOccurred())
				defer resp.Body.Close()
				Expect(resp.StatusCode).To(Equal(http.StatusOK))

				var ds lineitem.Dataset
				Expect(json.NewDecoder(resp.Body).Decode(&ds)).To(Succeed())
				Expect(ds.ID).To(Equal("id1"))
			})
		})

		When("the dataset does not exist", func() {
			It("should return not found", func() {
				resp, err := http.Get(ghttpServer.URL() + "/api/datasets/missing")
				Expect(err).NotTo(HaveOccurred())
				resp.Body.Close()
				Expect(resp.StatusCode).To(Equal(http.StatusNotFound))
			})
		})
	})

	Describe("handleGetReport", func() {
		When("the dataset has records", func() {
			BeforeEach(func() {
				db.records["id1"] = []lineitem.Record{
					{ReceiptID: "r1", Name: "Milk", Quantity: 2, LineTotal: 10.98},
				}
			})

			It("should return the analytics bundle", func() {
				resp, err := http.Get(ghttpServer.URL() + "/api/datasets/id1/report")
				Expect(err).NotTo(HaveOccurred())
				defer resp.Body.Close()
				Expect(resp.StatusCode).To(Equal(http.StatusOK))

				var report analytics.Report
				Expect(json.NewDecoder(resp.Body).Decode(&report)).To(Succeed())
				Expect(report.Summary.TotalSpent).To(Equal(10.98))
				Expect(report.Summary.TotalTrips).To(Equal(1))
				Expect(report.Insights).NotTo(BeEmpty())
			})
		})

		When("the dataset does not exist", func() {
			It("should return not found", func() {
				resp, err := http.Get(ghttpServer.URL() + "/api/datasets/missing/report")
				Expect(err).NotTo(HaveOccurred())
				resp.Body.Close()
				Expect(resp.StatusCode).To(Equal(http.StatusNotFound))
			})
		})
	})

	Describe("handleDeleteDataset", func() {
		BeforeEach(func() {
			db.datasets["id1"] = &lineitem.Dataset{ID: "id1", Name: "One"}
		})

		It("should return no content", func() {
			req, err := http.NewRequest("DELETE", ghttpServer.URL()+"/api/datasets/id1", nil)
			Expect(err).NotTo(HaveOccurred())
			resp, err := http.DefaultClient.Do(req)
			Expect(err).NotTo(HaveOccurred())
			resp.Body.Close()
			Expect(resp.StatusCode).To(Equal(http.StatusNoContent))
			Expect(db.datasets).To(BeEmpty())
		})
	})

	Describe("basic auth", func() {
		BeforeEach(func() {
			auth = BasicAuth{Username: "admin", Password: "secret"}
			setupServer()
		})

		When("no credentials are sent", func() {
			It("should return unauthorized with a challenge", func() {
				resp, err := http.Get(ghttpServer.URL() + "/api/datasets")
				Expect(err).NotTo(HaveOccurred())
				resp.Body.Close()
				Expect(resp.StatusCode).To(Equal(http.StatusUnauthorized))
				Expect(resp.Header.Get("WWW-Authenticate")).To(ContainSubstring("Basic"))
			})
		})

		When("valid credentials are sent", func() {
			It("should serve the request", func() {
				req, err := http.NewRequest("GET", ghttpServer.URL()+"/api/datasets", nil)
				Expect(err).NotTo(HaveOccurred())
				req.Header.Set("Authorization",
					"Basic "+base64.StdEncoding.EncodeToString([]byte("admin:secret")))

				resp, err := http.DefaultClient.Do(req)
				Expect(err).NotTo(HaveOccurred())
				resp.Body.Close()
				Expect(resp.StatusCode).To(Equal(http.StatusOK))
			})
		})

		When("wrong credentials are sent", func() {
			It("should return unauthorized", func() {
				req, err := http.NewRequest("GET", ghttpServer.URL()+"/api/datasets", nil)
				Expect(err).NotTo(HaveOccurred())
				req.Header.Set("Authorization",
					"Basic "+base64.StdEncoding.EncodeToString([]byte("admin:wrong")))

				resp, err := http.DefaultClient.Do(req)
				Expect(err).NotTo(HaveOccurred())
				resp.Body.Close()
				Expect(resp.StatusCode).To(Equal(http.StatusUnauthorized))
			})
		})
	})
})
