package metrics

import "github.com/prometheus/client_golang/prometheus"

type (
	HTTPMetricLabels struct {
		Server, Method, Code string
	}
	CertEventLabels struct {
		Domain, Kind string
	}
	CertMetricLabels string
)

func (lbl *HTTPMetricLabels) toPromLabels() prometheus.Labels {
	return prometheus.Labels{
		"server": lbl.Server,
		"method": lbl.Method,
		"code":   lbl.Code,
	}
}

func (lbl *CertEventLabels) toPromLabels() prometheus.Labels {
	return prometheus.Labels{
		"domain": lbl.Domain,
		"kind":   lbl.Kind,
	}
}

func (lbl CertMetricLabels) toPromLabels() prometheus.Labels {
	return prometheus.Labels{
		"domain": string(lbl),
	}
}
